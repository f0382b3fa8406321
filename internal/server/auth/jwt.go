// Package auth issues and verifies the signed access tokens used by the API.
// Tokens are stateless: any holder of the signing secret can verify them
// without a database lookup, and there is no revocation at this layer.
package auth

import (
	"errors"
	"time"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningConfig bundles everything needed to mint and verify access tokens.
// It is loaded once at startup; Validate failures are fatal, not per-request.
type SigningConfig struct {
	Secret    []byte
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

// Validate reports a configuration error when any signing parameter is unusable.
func (c SigningConfig) Validate() error {
	if len(c.Secret) == 0 {
		return errors.New("signing secret is empty")
	}
	if c.Issuer == "" {
		return errors.New("token issuer is empty")
	}
	if c.Audience == "" {
		return errors.New("token audience is empty")
	}
	if c.AccessTTL <= 0 {
		return errors.New("access token TTL must be positive")
	}
	return nil
}

// GenerateToken mints a signed HS256 access token for the given username.
// Claims: sub (username), jti (random UUID, fresh per call), iss, aud, iat
// and exp = now + AccessTTL.
func GenerateToken(username string, cfg SigningConfig) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
	})

	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature, issuer, audience and expiry of an access
// token and returns its subject. Expired tokens yield common.ErrTokenExpired,
// anything else invalid yields common.ErrInvalidToken.
func ParseToken(tokenString string, cfg SigningConfig) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return cfg.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
