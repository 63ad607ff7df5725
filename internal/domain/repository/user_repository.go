package repository

import (
	"context"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
)

// UserRepository is the storage contract for users, implemented once per
// backing store. Adapters translate driver-level uniqueness violations into
// apperr Conflict and missing rows/documents into apperr NotFound.
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id valueobject.UserID) (*entity.User, error)
	FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error)
	// FindAll returns users ordered newest-created-first.
	FindAll(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id valueobject.UserID) error
	ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error)
}
