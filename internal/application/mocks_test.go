package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// Function-field mocks so each test wires only the calls it expects.

type mockUserRepo struct {
	SaveFn          func(ctx context.Context, u *entity.User) error
	FindByIDFn      func(ctx context.Context, id valueobject.UserID) (*entity.User, error)
	FindByEmailFn   func(ctx context.Context, email valueobject.Email) (*entity.User, error)
	FindAllFn       func(ctx context.Context) ([]*entity.User, error)
	UpdateFn        func(ctx context.Context, u *entity.User) error
	DeleteFn        func(ctx context.Context, id valueobject.UserID) error
	ExistsByEmailFn func(ctx context.Context, email valueobject.Email) (bool, error)
}

func (m *mockUserRepo) Save(ctx context.Context, u *entity.User) error { return m.SaveFn(ctx, u) }
func (m *mockUserRepo) FindByID(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
	return m.FindByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error) {
	return m.FindByEmailFn(ctx, email)
}
func (m *mockUserRepo) FindAll(ctx context.Context) ([]*entity.User, error) { return m.FindAllFn(ctx) }
func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error    { return m.UpdateFn(ctx, u) }
func (m *mockUserRepo) Delete(ctx context.Context, id valueobject.UserID) error {
	return m.DeleteFn(ctx, id)
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error) {
	return m.ExistsByEmailFn(ctx, email)
}

type mockRefreshTokenRepo struct {
	SaveFn             func(ctx context.Context, t *entity.RefreshToken) error
	FindByTokenFn      func(ctx context.Context, token string) (*entity.RefreshToken, error)
	DeleteFn           func(ctx context.Context, id valueobject.RefreshTokenID) error
	DeleteByTokenFn    func(ctx context.Context, token string) error
	DeleteAllForUserFn func(ctx context.Context, userID valueobject.UserID) error
	DeleteExpiredFn    func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockRefreshTokenRepo) Save(ctx context.Context, t *entity.RefreshToken) error {
	return m.SaveFn(ctx, t)
}
func (m *mockRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	return m.FindByTokenFn(ctx, token)
}
func (m *mockRefreshTokenRepo) Delete(ctx context.Context, id valueobject.RefreshTokenID) error {
	return m.DeleteFn(ctx, id)
}
func (m *mockRefreshTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return m.DeleteByTokenFn(ctx, token)
}
func (m *mockRefreshTokenRepo) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	return m.DeleteAllForUserFn(ctx, userID)
}
func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, before)
}

type mockResetTokenRepo struct {
	SaveFn             func(ctx context.Context, t *entity.PasswordResetToken) error
	FindByTokenHashFn  func(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)
	DeleteFn           func(ctx context.Context, id valueobject.PasswordResetTokenID) error
	DeleteAllForUserFn func(ctx context.Context, userID valueobject.UserID) error
	DeleteExpiredFn    func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockResetTokenRepo) Save(ctx context.Context, t *entity.PasswordResetToken) error {
	return m.SaveFn(ctx, t)
}
func (m *mockResetTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	return m.FindByTokenHashFn(ctx, tokenHash)
}
func (m *mockResetTokenRepo) Delete(ctx context.Context, id valueobject.PasswordResetTokenID) error {
	return m.DeleteFn(ctx, id)
}
func (m *mockResetTokenRepo) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	return m.DeleteAllForUserFn(ctx, userID)
}
func (m *mockResetTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, before)
}

// mockRepos bundles one mock per store. Zero-value repos panic when an
// unexpected call happens, which is exactly what a test wants.
type mockRepos struct {
	userDocs *mockUserRepo
	userRows *mockUserRepo
	rtDocs   *mockRefreshTokenRepo
	rtRows   *mockRefreshTokenRepo
	prDocs   *mockResetTokenRepo
	prRows   *mockResetTokenRepo
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		userDocs: &mockUserRepo{},
		userRows: &mockUserRepo{},
		rtDocs:   &mockRefreshTokenRepo{},
		rtRows:   &mockRefreshTokenRepo{},
		prDocs:   &mockResetTokenRepo{},
		prRows:   &mockResetTokenRepo{},
	}
}

func (m *mockRepos) UserDocs() repository.UserRepository { return m.userDocs }
func (m *mockRepos) UserRows() repository.UserRepository { return m.userRows }
func (m *mockRepos) RefreshTokenDocs() repository.RefreshTokenRepository {
	return m.rtDocs
}
func (m *mockRepos) RefreshTokenRows() repository.RefreshTokenRepository {
	return m.rtRows
}
func (m *mockRepos) ResetTokenDocs() repository.PasswordResetTokenRepository {
	return m.prDocs
}
func (m *mockRepos) ResetTokenRows() repository.PasswordResetTokenRepository {
	return m.prRows
}

func newTestUser(t *testing.T, email string) *entity.User {
	t.Helper()
	addr, err := valueobject.NewEmail(email)
	require.NoError(t, err)
	password, err := valueobject.PasswordFromHash("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	require.NoError(t, err)
	u, err := entity.NewUser("Test User", addr, password, valueobject.RoleUser, nil)
	require.NoError(t, err)
	return u
}

func notFound(code string) error {
	return apperr.NotFound(code, "not found")
}
