package models

import "time"

// User is the server-side identity record. RefreshToken holds the single
// currently valid refresh token for the user (empty when none has been
// issued or the previous one was cleared); RefreshTokenExpiresAt is its
// expiry. A token past that timestamp is invalid regardless of string match.
type User struct {
	ID                    string
	Username              string
	PasswordHash          string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	CreatedAt             time.Time
}
