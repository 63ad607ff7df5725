package repository

import (
	"context"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
)

// RefreshTokenRepository persists opaque refresh tokens. Tokens rotate rather
// than update, so the contract has no Update.
type RefreshTokenRepository interface {
	Save(ctx context.Context, t *entity.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	Delete(ctx context.Context, id valueobject.RefreshTokenID) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error
	// DeleteExpired purges tokens whose expiry is before the given instant and
	// returns the number removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
