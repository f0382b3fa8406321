// Package users declares the server-side repository contract for identity
// records and their refresh-token state.
package users

import (
	"context"
	"time"

	"github.com/avasiljevs/stockroom/internal/server/models"
)

// Repository defines the credential-store operations used by the auth service.
type Repository interface {
	// Create stores a new user and returns it with the generated ID.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername looks up a user by exact username match.
	// Implementations return a not-found error when the user is absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByValidRefreshToken looks up the user holding the given refresh
	// token, applying the expiry filter in the store: a token whose expiry
	// is at or before now never matches.
	GetByValidRefreshToken(ctx context.Context, token string, now time.Time) (*models.User, error)

	// UpdateRefreshState atomically replaces the user's refresh token and its
	// expiry, compare-and-swapped against the previous token value (empty
	// prevToken means the user held none). When the stored token no longer
	// equals prevToken the update is rejected with a conflict error, so a
	// losing concurrent rotation can never overwrite a winner.
	UpdateRefreshState(ctx context.Context, userID, prevToken, newToken string, expiresAt time.Time) error
}
