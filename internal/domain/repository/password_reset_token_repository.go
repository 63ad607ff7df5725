package repository

import (
	"context"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
)

// PasswordResetTokenRepository persists hashed password-reset tokens. At most
// one live token exists per user; callers enforce that by deleting all prior
// tokens before saving a new one.
type PasswordResetTokenRepository interface {
	Save(ctx context.Context, t *entity.PasswordResetToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)
	Delete(ctx context.Context, id valueobject.PasswordResetTokenID) error
	DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
