package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

const avatarBucket = "avatars"

// ProfileUpdater merges profile fields in the record store.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, profile models.Profile) error
}

// ProfileAvatar uploads an image to blob storage and points the profile's
// avatar URL at it.
func (r *Runner) ProfileAvatar(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	if r.storage == nil {
		return fmt.Errorf("%w: no blob storage configured", shared.ErrMissingConfig)
	}

	path := cmd.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	objectPath := userID + ext

	if err := r.storage.Upload(ctx, avatarBucket, objectPath, data, contentType); err != nil {
		return fmt.Errorf("avatar upload failed: %w", err)
	}

	avatarURL := r.storage.PublicURL(avatarBucket, objectPath)
	if updater, ok := r.books.(ProfileUpdater); ok {
		profile := models.Profile{ID: userID, AvatarURL: avatarURL}
		if err := updater.UpdateProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
	}

	r.writePlain("✓ Avatar uploaded: %s\n", avatarURL)
	return nil
}

// ProfileUsername changes the profile's display name.
func (r *Runner) ProfileUsername(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	updater, ok := r.books.(ProfileUpdater)
	if !ok {
		return fmt.Errorf("%w: profiles live in the remote store", shared.ErrServiceUnavailable)
	}

	if err := updater.UpdateProfile(ctx, models.Profile{ID: userID, Username: name}); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	r.writePlain("✓ Username set to %s\n", name)
	return nil
}
