package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("writes document store before relational mirror", func(t *testing.T) {
		repos := newMockRepos()
		var order []string
		repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
			return false, nil
		}
		repos.userDocs.SaveFn = func(ctx context.Context, u *entity.User) error {
			order = append(order, "docs")
			return nil
		}
		repos.userRows.SaveFn = func(ctx context.Context, u *entity.User) error {
			order = append(order, "rows")
			return nil
		}
		svc := NewUserService(repos, testLogger())

		res, err := svc.Create(ctx, CreateUserInput{
			Name:     "Alice",
			Email:    "Alice@Example.com",
			Password: "Sup3rSecret!",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"docs", "rows"}, order)
		assert.Equal(t, "alice@example.com", res.Email)
		assert.Equal(t, "USER", res.Role)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("skips mirror when document write fails", func(t *testing.T) {
		repos := newMockRepos()
		boom := errors.New("es down")
		mirrorCalled := false
		repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
			return false, nil
		}
		repos.userDocs.SaveFn = func(ctx context.Context, u *entity.User) error { return boom }
		repos.userRows.SaveFn = func(ctx context.Context, u *entity.User) error {
			mirrorCalled = true
			return nil
		}
		svc := NewUserService(repos, testLogger())

		_, err := svc.Create(ctx, CreateUserInput{Name: "Alice", Email: "a@b.com", Password: "Sup3rSecret!"})
		require.ErrorIs(t, err, boom)
		assert.False(t, mirrorCalled)
	})

	t.Run("surfaces mirror failure without rolling back", func(t *testing.T) {
		repos := newMockRepos()
		docsSaved := false
		repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
			return false, nil
		}
		repos.userDocs.SaveFn = func(ctx context.Context, u *entity.User) error {
			docsSaved = true
			return nil
		}
		repos.userRows.SaveFn = func(ctx context.Context, u *entity.User) error {
			return errors.New("pg down")
		}
		svc := NewUserService(repos, testLogger())

		_, err := svc.Create(ctx, CreateUserInput{Name: "Alice", Email: "a@b.com", Password: "Sup3rSecret!"})
		require.Error(t, err)
		assert.True(t, docsSaved)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repos := newMockRepos()
		repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
			return true, nil
		}
		svc := NewUserService(repos, testLogger())

		_, err := svc.Create(ctx, CreateUserInput{Name: "Alice", Email: "a@b.com", Password: "Sup3rSecret!"})
		require.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.Equal(t, "User with this email already exists", apperr.From(err).Message)
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		repos := newMockRepos()
		repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
			return false, nil
		}
		svc := NewUserService(repos, testLogger())

		_, err := svc.Create(ctx, CreateUserInput{Name: "Alice", Email: "a@b.com", Password: "Sup3rSecret!", Role: "SUPERADMIN"})
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("changing to a taken email conflicts", func(t *testing.T) {
		repos := newMockRepos()
		self := newTestUser(t, "self@example.com")
		other := newTestUser(t, "taken@example.com")
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return self, nil
		}
		repos.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return other, nil
		}
		svc := NewUserService(repos, testLogger())

		email := "taken@example.com"
		_, err := svc.Update(ctx, self.ID().String(), UpdateUserInput{Email: &email})
		require.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.Equal(t, "Email already taken by another user", apperr.From(err).Message)
	})

	t.Run("same email is not a conflict", func(t *testing.T) {
		repos := newMockRepos()
		self := newTestUser(t, "self@example.com")
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return self, nil
		}
		repos.userDocs.UpdateFn = func(ctx context.Context, u *entity.User) error { return nil }
		repos.userRows.UpdateFn = func(ctx context.Context, u *entity.User) error { return nil }
		svc := NewUserService(repos, testLogger())

		email := "Self@Example.com"
		res, err := svc.Update(ctx, self.ID().String(), UpdateUserInput{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "self@example.com", res.Email)
	})

	t.Run("age cleared when explicitly set to nil", func(t *testing.T) {
		repos := newMockRepos()
		addr, err := valueobject.NewEmail("aged@example.com")
		require.NoError(t, err)
		password, err := valueobject.PasswordFromHash("x-hash")
		require.NoError(t, err)
		age := 40
		u, err := entity.NewUser("Aged", addr, password, valueobject.RoleUser, &age)
		require.NoError(t, err)

		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.userDocs.UpdateFn = func(ctx context.Context, u *entity.User) error { return nil }
		repos.userRows.UpdateFn = func(ctx context.Context, u *entity.User) error { return nil }
		svc := NewUserService(repos, testLogger())

		res, err := svc.Update(ctx, u.ID().String(), UpdateUserInput{Age: nil, AgeSet: true})
		require.NoError(t, err)
		assert.Nil(t, res.Age)
	})

	t.Run("out of range age rejected", func(t *testing.T) {
		repos := newMockRepos()
		u := newTestUser(t, "aged@example.com")
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		svc := NewUserService(repos, testLogger())

		age := 200
		_, err := svc.Update(ctx, u.ID().String(), UpdateUserInput{Age: &age, AgeSet: true})
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
		assert.Equal(t, "Invalid age", apperr.From(err).Message)
	})
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is not found", func(t *testing.T) {
		repos := newMockRepos()
		deleted := false
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return nil, notFound("USER_NOT_FOUND")
		}
		repos.userDocs.DeleteFn = func(ctx context.Context, id valueobject.UserID) error {
			deleted = true
			return nil
		}
		svc := NewUserService(repos, testLogger())

		err := svc.Delete(ctx, "some-id")
		require.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.False(t, deleted)
	})

	t.Run("deletes from both stores", func(t *testing.T) {
		repos := newMockRepos()
		u := newTestUser(t, "gone@example.com")
		var order []string
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.userDocs.DeleteFn = func(ctx context.Context, id valueobject.UserID) error {
			order = append(order, "docs")
			return nil
		}
		repos.userRows.DeleteFn = func(ctx context.Context, id valueobject.UserID) error {
			order = append(order, "rows")
			return nil
		}
		svc := NewUserService(repos, testLogger())

		require.NoError(t, svc.Delete(ctx, u.ID().String()))
		assert.Equal(t, []string{"docs", "rows"}, order)
	})
}

func TestUserServiceReads(t *testing.T) {
	ctx := context.Background()

	t.Run("list is served from the document store only", func(t *testing.T) {
		repos := newMockRepos()
		users := []*entity.User{newTestUser(t, "a@b.com"), newTestUser(t, "c@d.com")}
		repos.userDocs.FindAllFn = func(ctx context.Context) ([]*entity.User, error) {
			return users, nil
		}
		svc := NewUserService(repos, testLogger())

		res, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "a@b.com", res[0].Email)
	})

	t.Run("get rejects empty id", func(t *testing.T) {
		svc := NewUserService(newMockRepos(), testLogger())
		_, err := svc.GetByID(ctx, "")
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
