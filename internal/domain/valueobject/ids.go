package valueobject

import (
	"github.com/google/uuid"

	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// Identifier value objects wrap generated UUID strings. Each has two
// construction paths: a generator for brand-new entities and a reconstructor
// that trusts a persisted value but rejects the empty string.

type UserID struct {
	value string
}

func NewUserID() UserID {
	return UserID{value: uuid.NewString()}
}

func UserIDFromString(s string) (UserID, error) {
	if s == "" {
		return UserID{}, apperr.Validation("INVALID_USER_ID", "user id must not be empty")
	}
	return UserID{value: s}, nil
}

func (id UserID) String() string { return id.value }

type RefreshTokenID struct {
	value string
}

func NewRefreshTokenID() RefreshTokenID {
	return RefreshTokenID{value: uuid.NewString()}
}

func RefreshTokenIDFromString(s string) (RefreshTokenID, error) {
	if s == "" {
		return RefreshTokenID{}, apperr.Validation("INVALID_REFRESH_TOKEN_ID", "refresh token id must not be empty")
	}
	return RefreshTokenID{value: s}, nil
}

func (id RefreshTokenID) String() string { return id.value }

type PasswordResetTokenID struct {
	value string
}

func NewPasswordResetTokenID() PasswordResetTokenID {
	return PasswordResetTokenID{value: uuid.NewString()}
}

func PasswordResetTokenIDFromString(s string) (PasswordResetTokenID, error) {
	if s == "" {
		return PasswordResetTokenID{}, apperr.Validation("INVALID_RESET_TOKEN_ID", "password reset token id must not be empty")
	}
	return PasswordResetTokenID{value: s}, nil
}

func (id PasswordResetTokenID) String() string { return id.value }
