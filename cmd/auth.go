package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// AuthLogin signs in with email and password and stores the session.
//
// Unknown accounts are created transparently by the auth endpoint's sign-up
// fallback, so login doubles as registration.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: no auth endpoint configured", shared.ErrMissingConfig)
	}

	email := cmd.String("email")
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = promptPassword(r); err != nil {
			return err
		}
	}

	session, err := r.auth.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := r.saveSession(session); err != nil {
		r.logger.Warn("session not persisted, you will need to log in again next run", "error", err)
	}

	r.writePlain("✓ Signed in as %s\n", session.Email)
	return nil
}

// AuthLogout revokes the session and removes it from disk.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.auth != nil {
		if err := r.auth.SignOut(ctx); err != nil {
			r.logger.Warn("remote sign-out failed, clearing local session anyway", "error", err)
		}
	}

	r.clearSession()
	r.writePlain("✓ Signed out\n")
	return nil
}

// AuthWhoami prints the signed-in account, if any.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil && (r.auth == nil || r.auth.Session() == nil) {
		r.writePlain("Not signed in\n")
		return nil
	}

	session := r.session
	if r.auth != nil && r.auth.Session() != nil {
		session = r.auth.Session()
	}

	r.writePlain("User:  %s\n", session.UserID)
	if session.Email != "" {
		r.writePlain("Email: %s\n", session.Email)
	}
	return nil
}

// AuthUpdate changes the account's email or password.
func (r *Runner) AuthUpdate(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: no auth endpoint configured", shared.ErrMissingConfig)
	}

	email := cmd.String("email")
	password := cmd.String("password")
	if email == "" && password == "" {
		return fmt.Errorf("%w: provide --email or --password", shared.ErrMissingArgument)
	}

	if err := r.auth.UpdateCredentials(ctx, email, password); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if session := r.auth.Session(); session != nil {
		if err := r.saveSession(session); err != nil {
			r.logger.Warn("session not persisted", "error", err)
		}
	}

	r.writePlain("✓ Credentials updated\n")
	return nil
}

// promptPassword reads a password from stdin.
func promptPassword(r *Runner) (string, error) {
	r.writePlain("Password: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimSpace(line)
	if password == "" {
		return "", fmt.Errorf("%w: empty password", shared.ErrInvalidInput)
	}
	return password, nil
}
