// Package services contains server-side business logic. This file implements
// AuthService, which verifies credentials and issues/rotates token pairs
// backed by a server-stored, single-use refresh token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/server/auth"
	"github.com/avasiljevs/stockroom/internal/server/config"
	"github.com/avasiljevs/stockroom/internal/server/models"
	"github.com/avasiljevs/stockroom/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// refreshTokenBytes is the entropy of the opaque refresh token before hex
// encoding. 32 bytes = 256 bits.
const refreshTokenBytes = 32

// AuthService provides authentication-related operations:
//   - Authenticate: verify username/password and mint a token pair
//   - Refresh: exchange a valid refresh token for a new pair, rotating the
//     stored token so the presented one becomes unusable
//
// The service is stateless between calls; all mutable state lives in the
// users repository. Failed lookups, wrong passwords and stale refresh
// tokens all collapse to the same unauthorized error so callers cannot
// probe which usernames exist.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	signing                      auth.SigningConfig
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		signing: auth.SigningConfig{
			Secret:    []byte(cfg.SecretKey),
			Issuer:    cfg.TokenIssuer,
			Audience:  cfg.TokenAudience,
			AccessTTL: cfg.AccessTokenValidityDuration,
		},
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// SigningConfig exposes the signing parameters for token verification in the
// transport layer.
func (s *AuthService) SigningConfig() auth.SigningConfig {
	return s.signing
}

// Authenticate verifies the password for the given username and, on success,
// returns a fresh token pair. The new refresh token replaces whatever token
// the user held before.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorUnavailable
	}

	if !s.checkPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	// A concurrent login changed the stored token between our read and the
	// swap; refuse to rotate rather than overwrite it.
	return s.rotate(ctx, user, common.ErrorUnavailable)
}

// Refresh validates a refresh token and rotates it: the presented token is
// overwritten by a newly generated one in the same store operation, so it
// can succeed at most once. Expired or unknown tokens, and tokens that lost
// a concurrent rotation race, yield the generic unauthorized error.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByValidRefreshToken(ctx, refreshToken, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorUnavailable
	}

	return s.rotate(ctx, user, common.ErrorUnauthorized)
}

// rotate mints a new token pair and swaps the stored refresh state, CAS'd
// against the token currently on the user record. conflictErr is returned
// when that swap loses to a concurrent writer.
func (s *AuthService) rotate(ctx context.Context, user *models.User, conflictErr error) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(user.Username, s.signing)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	expiresAt := time.Now().Add(s.refreshTokenValidityDuration)

	repo := s.repomanager.Users(s.db)
	err = repo.UpdateRefreshState(ctx, user.ID, user.RefreshToken, refreshToken, expiresAt)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, conflictErr
		}
		return nil, common.ErrorUnavailable
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) checkPassword(passwordHash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}
