package entity

import (
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// RefreshToken is a persisted opaque bearer token owned by exactly one user.
// Expiry is evaluated by the caller at use time; tokens are rotated, never
// updated in place.
type RefreshToken struct {
	id        valueobject.RefreshTokenID
	token     string
	userID    valueobject.UserID
	expiresAt time.Time
	createdAt time.Time
}

func NewRefreshToken(token string, userID valueobject.UserID, expiresAt time.Time) (*RefreshToken, error) {
	if token == "" {
		return nil, apperr.Validation("INVALID_REFRESH_TOKEN", "refresh token must not be empty")
	}
	return &RefreshToken{
		id:        valueobject.NewRefreshTokenID(),
		token:     token,
		userID:    userID,
		expiresAt: expiresAt.UTC().Truncate(time.Millisecond),
		createdAt: time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

func ReconstructRefreshToken(id valueobject.RefreshTokenID, token string, userID valueobject.UserID, expiresAt, createdAt time.Time) *RefreshToken {
	return &RefreshToken{
		id:        id,
		token:     token,
		userID:    userID,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

func (t *RefreshToken) ID() valueobject.RefreshTokenID { return t.id }
func (t *RefreshToken) Token() string                  { return t.token }
func (t *RefreshToken) UserID() valueobject.UserID     { return t.userID }
func (t *RefreshToken) ExpiresAt() time.Time           { return t.expiresAt }
func (t *RefreshToken) CreatedAt() time.Time           { return t.createdAt }

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.expiresAt)
}
