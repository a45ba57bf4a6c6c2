// package services defines clients for the external collaborators:
// bibliographic catalogs, the authentication endpoint, and blob storage.
package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/AnouckGaloppin/BookMark/internal/models"
)

// Catalog searches bibliographic records and resolves page counts.
type Catalog interface {
	// Search returns candidate records for a free-text query.
	Search(ctx context.Context, query string) ([]models.CatalogResult, error)

	// PageCount resolves the total pages for a result whose search record
	// carried none, trying progressively less precise sources.
	PageCount(ctx context.Context, result models.CatalogResult) (int, error)
}

// Authenticator manages the user session against the auth endpoint.
type Authenticator interface {
	// SignIn authenticates with email and password. Unknown accounts are
	// signed up transparently.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the current session.
	SignOut(ctx context.Context) error

	// UpdateCredentials changes the account's email or password. Empty
	// fields are left unchanged.
	UpdateCredentials(ctx context.Context, email, password string) error

	// CurrentUserID returns the signed-in user's ID, or empty when no
	// session exists.
	CurrentUserID(ctx context.Context) string
}

// BlobStore stores opaque user files, such as profile avatars.
type BlobStore interface {
	// Upload stores data under bucket/path, replacing any existing object.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error

	// PublicURL returns the world-readable URL for an object.
	PublicURL(bucket, path string) string
}

// Session is an authenticated user session.
type Session struct {
	UserID string
	Email  string
	Token  *oauth2.Token
}
