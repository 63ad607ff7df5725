package entity

import (
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// PasswordResetToken stores only the SHA-256 hash of the raw reset token; the
// raw value leaves the process once, in the reset-request response.
type PasswordResetToken struct {
	id        valueobject.PasswordResetTokenID
	tokenHash string
	userID    valueobject.UserID
	expiresAt time.Time
	createdAt time.Time
}

func NewPasswordResetToken(tokenHash string, userID valueobject.UserID, expiresAt time.Time) (*PasswordResetToken, error) {
	if tokenHash == "" {
		return nil, apperr.Validation("INVALID_RESET_TOKEN", "reset token hash must not be empty")
	}
	return &PasswordResetToken{
		id:        valueobject.NewPasswordResetTokenID(),
		tokenHash: tokenHash,
		userID:    userID,
		expiresAt: expiresAt.UTC().Truncate(time.Millisecond),
		createdAt: time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

func ReconstructPasswordResetToken(id valueobject.PasswordResetTokenID, tokenHash string, userID valueobject.UserID, expiresAt, createdAt time.Time) *PasswordResetToken {
	return &PasswordResetToken{
		id:        id,
		tokenHash: tokenHash,
		userID:    userID,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

func (t *PasswordResetToken) ID() valueobject.PasswordResetTokenID { return t.id }
func (t *PasswordResetToken) TokenHash() string                    { return t.tokenHash }
func (t *PasswordResetToken) UserID() valueobject.UserID           { return t.userID }
func (t *PasswordResetToken) ExpiresAt() time.Time                 { return t.expiresAt }
func (t *PasswordResetToken) CreatedAt() time.Time                 { return t.createdAt }

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.expiresAt)
}
