// Password auth client for the hosted record store's auth endpoint.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// AuthClient implements [Authenticator] against a GoTrue-style auth endpoint.
//
// Sign-in with an unknown account falls through to sign-up, so a single
// email/password prompt serves both flows.
type AuthClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.RWMutex
	session *Session
}

// NewAuthClient creates an AuthClient for the auth endpoint at baseURL.
func NewAuthClient(baseURL, apiKey string, client *http.Client) *AuthClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &AuthClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn authenticates with email and password.
//
// An invalid-credentials response triggers a transparent sign-up attempt, so
// first-time users are created on their first sign-in. Other failures are
// returned as errors.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, status, err := a.requestToken(ctx, "/token?grant_type=password", email, password)
	if err == nil {
		a.setSession(session)
		return session, nil
	}
	if status != http.StatusBadRequest && status != http.StatusUnauthorized {
		return nil, err
	}

	session, _, err = a.requestToken(ctx, "/signup", email, password)
	if err != nil {
		return nil, fmt.Errorf("sign-up fallback failed: %w", err)
	}

	a.setSession(session)
	return session, nil
}

// SignOut revokes the current session at the endpoint and clears it locally.
//
// Without a session this is a no-op.
func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()
	if session == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	a.authorize(req, session)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	resp.Body.Close()

	a.setSession(nil)
	return nil
}

// UpdateCredentials changes the signed-in account's email or password.
// Empty fields are left unchanged.
func (a *AuthClient) UpdateCredentials(ctx context.Context, email, password string) error {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()
	if session == nil {
		return shared.ErrNotAuthenticated
	}

	payload := map[string]string{}
	if email != "" {
		payload["email"] = email
	}
	if password != "" {
		payload["password"] = password
	}
	if len(payload) == 0 {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.baseURL+"/user", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	a.authorize(req, session)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("credential update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if email != "" {
		a.mu.Lock()
		a.session.Email = email
		a.mu.Unlock()
	}

	return nil
}

// CurrentUserID returns the signed-in user's ID, or empty without a session.
func (a *AuthClient) CurrentUserID(context.Context) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil {
		return ""
	}
	return a.session.UserID
}

// Session returns the current session, or nil when signed out.
func (a *AuthClient) Session() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// AccessToken returns the current bearer token, or empty when signed out.
func (a *AuthClient) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil || a.session.Token == nil {
		return ""
	}
	return a.session.Token.AccessToken
}

func (a *AuthClient) requestToken(ctx context.Context, path, email, password string) (*Session, int, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("apikey", a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"msg"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return nil, resp.StatusCode, fmt.Errorf("%w: %s", shared.ErrAPIRequest, errResp.Message)
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode auth response: %w", err)
	}

	return &Session{
		UserID: token.User.ID,
		Email:  token.User.Email,
		Token: &oauth2.Token{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		},
	}, resp.StatusCode, nil
}

func (a *AuthClient) authorize(req *http.Request, session *Session) {
	if a.apiKey != "" {
		req.Header.Set("apikey", a.apiKey)
	}
	if session != nil && session.Token != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token.AccessToken)
	}
}

func (a *AuthClient) setSession(session *Session) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
}
