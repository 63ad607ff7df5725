package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

func testJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

// wireTokenSaves lets issueTokens succeed without asserting on it.
func wireTokenSaves(repos *mockRepos) {
	repos.rtDocs.SaveFn = func(ctx context.Context, t *entity.RefreshToken) error { return nil }
	repos.rtRows.SaveFn = func(ctx context.Context, t *entity.RefreshToken) error { return nil }
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	var saved *entity.User
	repos.userDocs.ExistsByEmailFn = func(ctx context.Context, email valueobject.Email) (bool, error) {
		return false, nil
	}
	repos.userDocs.SaveFn = func(ctx context.Context, u *entity.User) error {
		saved = u
		return nil
	}
	repos.userRows.SaveFn = func(ctx context.Context, u *entity.User) error { return nil }
	wireTokenSaves(repos)
	svc := NewAuthService(repos, testJWT(), testLogger())

	res, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "Sup3rSecret!"})
	require.NoError(t, err)
	require.NotNil(t, saved)

	// Registration never grants anything above the base role.
	assert.Equal(t, "USER", res.User.Role)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.True(t, saved.Password().Compare("Sup3rSecret!"))

	claims, err := testJWT().ParseAccessToken(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		reposUnknown := newMockRepos()
		reposUnknown.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return nil, notFound("USER_NOT_FOUND")
		}
		svcUnknown := NewAuthService(reposUnknown, testJWT(), testLogger())
		_, errUnknown := svcUnknown.Login(ctx, "ghost@example.com", "Sup3rSecret!")

		password, err := valueobject.NewPassword("Corr3ctHorse!")
		require.NoError(t, err)
		addr, err := valueobject.NewEmail("real@example.com")
		require.NoError(t, err)
		u, err := entity.NewUser("Real", addr, password, valueobject.RoleUser, nil)
		require.NoError(t, err)

		reposWrong := newMockRepos()
		reposWrong.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return u, nil
		}
		svcWrong := NewAuthService(reposWrong, testJWT(), testLogger())
		_, errWrong := svcWrong.Login(ctx, "real@example.com", "WrongPassw0rd!")

		require.True(t, apperr.IsKind(errUnknown, apperr.KindUnauthorized))
		require.True(t, apperr.IsKind(errWrong, apperr.KindUnauthorized))
		assert.Equal(t, "Invalid email or password", apperr.From(errUnknown).Message)
		assert.Equal(t, apperr.From(errUnknown).Message, apperr.From(errWrong).Message)
		assert.Equal(t, apperr.From(errUnknown).Code, apperr.From(errWrong).Code)
	})

	t.Run("valid credentials issue a pair and persist the refresh token", func(t *testing.T) {
		password, err := valueobject.NewPassword("Corr3ctHorse!")
		require.NoError(t, err)
		addr, err := valueobject.NewEmail("real@example.com")
		require.NoError(t, err)
		u, err := entity.NewUser("Real", addr, password, valueobject.RoleUser, nil)
		require.NoError(t, err)

		repos := newMockRepos()
		var order []string
		repos.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return u, nil
		}
		repos.rtDocs.SaveFn = func(ctx context.Context, rt *entity.RefreshToken) error {
			order = append(order, "docs")
			return nil
		}
		repos.rtRows.SaveFn = func(ctx context.Context, rt *entity.RefreshToken) error {
			order = append(order, "rows")
			return nil
		}
		svc := NewAuthService(repos, testJWT(), testLogger())

		res, err := svc.Login(ctx, "real@example.com", "Corr3ctHorse!")
		require.NoError(t, err)
		assert.Equal(t, []string{"docs", "rows"}, order)
		assert.Equal(t, u.ID().String(), res.User.ID)
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	ctx := context.Background()
	jwt := testJWT()

	issue := func(t *testing.T, u *entity.User) (string, *entity.RefreshToken) {
		t.Helper()
		tokenStr, exp, err := jwt.GenerateRefreshToken(u.ID().String(), u.Email().String(), u.Role().String())
		require.NoError(t, err)
		stored, err := entity.NewRefreshToken(tokenStr, u.ID(), exp)
		require.NoError(t, err)
		return tokenStr, stored
	}

	t.Run("rotation deletes the old token and saves a new one", func(t *testing.T) {
		u := newTestUser(t, "rotate@example.com")
		tokenStr, stored := issue(t, u)

		repos := newMockRepos()
		var deletedID valueobject.RefreshTokenID
		var savedToken string
		repos.rtDocs.FindByTokenFn = func(ctx context.Context, token string) (*entity.RefreshToken, error) {
			require.Equal(t, tokenStr, token)
			return stored, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.rtDocs.DeleteFn = func(ctx context.Context, id valueobject.RefreshTokenID) error {
			deletedID = id
			return nil
		}
		repos.rtRows.DeleteFn = func(ctx context.Context, id valueobject.RefreshTokenID) error { return nil }
		repos.rtDocs.SaveFn = func(ctx context.Context, rt *entity.RefreshToken) error {
			savedToken = rt.Token()
			return nil
		}
		repos.rtRows.SaveFn = func(ctx context.Context, rt *entity.RefreshToken) error { return nil }
		svc := NewAuthService(repos, jwt, testLogger())

		res, err := svc.Refresh(ctx, tokenStr)
		require.NoError(t, err)
		assert.Equal(t, stored.ID(), deletedID)
		assert.NotEmpty(t, savedToken)
		assert.NotEqual(t, tokenStr, res.Tokens.RefreshToken)
	})

	t.Run("rotation fails when the old token cannot be purged", func(t *testing.T) {
		u := newTestUser(t, "stuck@example.com")
		tokenStr, stored := issue(t, u)

		repos := newMockRepos()
		issued := false
		repos.rtDocs.FindByTokenFn = func(ctx context.Context, token string) (*entity.RefreshToken, error) {
			return stored, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.rtDocs.DeleteFn = func(ctx context.Context, id valueobject.RefreshTokenID) error {
			return apperr.Database("delete failed", errors.New("es down"))
		}
		repos.rtDocs.SaveFn = func(ctx context.Context, rt *entity.RefreshToken) error {
			issued = true
			return nil
		}
		svc := NewAuthService(repos, jwt, testLogger())

		// The old token stays live in both stores, so reporting success here
		// would break rotation.
		_, err := svc.Refresh(ctx, tokenStr)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindDatabase))
		assert.False(t, issued)
	})

	t.Run("revoked token is unauthorized", func(t *testing.T) {
		u := newTestUser(t, "revoked@example.com")
		tokenStr, _ := issue(t, u)

		repos := newMockRepos()
		repos.rtDocs.FindByTokenFn = func(ctx context.Context, token string) (*entity.RefreshToken, error) {
			return nil, notFound("REFRESH_TOKEN_NOT_FOUND")
		}
		svc := NewAuthService(repos, jwt, testLogger())

		_, err := svc.Refresh(ctx, tokenStr)
		require.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		assert.Equal(t, "Refresh token not found or has been revoked", apperr.From(err).Message)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		svc := NewAuthService(newMockRepos(), jwt, testLogger())
		_, err := svc.Refresh(ctx, "not-a-jwt")
		require.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	})

	t.Run("stored token past expiry is purged and rejected", func(t *testing.T) {
		u := newTestUser(t, "stale@example.com")
		tokenStr, _, err := jwt.GenerateRefreshToken(u.ID().String(), u.Email().String(), u.Role().String())
		require.NoError(t, err)
		stale := entity.ReconstructRefreshToken(
			valueobject.NewRefreshTokenID(), tokenStr, u.ID(),
			time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour),
		)

		repos := newMockRepos()
		purged := false
		repos.rtDocs.FindByTokenFn = func(ctx context.Context, token string) (*entity.RefreshToken, error) {
			return stale, nil
		}
		repos.rtDocs.DeleteFn = func(ctx context.Context, id valueobject.RefreshTokenID) error {
			purged = true
			return nil
		}
		repos.rtRows.DeleteFn = func(ctx context.Context, id valueobject.RefreshTokenID) error { return nil }
		svc := NewAuthService(repos, jwt, testLogger())

		_, err = svc.Refresh(ctx, tokenStr)
		require.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		assert.True(t, purged)
	})
}

func TestAuthServiceLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("logging out an already revoked token succeeds", func(t *testing.T) {
		repos := newMockRepos()
		repos.rtDocs.DeleteByTokenFn = func(ctx context.Context, token string) error {
			return notFound("REFRESH_TOKEN_NOT_FOUND")
		}
		repos.rtRows.DeleteByTokenFn = func(ctx context.Context, token string) error {
			return notFound("REFRESH_TOKEN_NOT_FOUND")
		}
		svc := NewAuthService(repos, testJWT(), testLogger())
		require.NoError(t, svc.Logout(ctx, "whatever"))
	})

	t.Run("logout all revokes on both stores", func(t *testing.T) {
		u := newTestUser(t, "all@example.com")
		repos := newMockRepos()
		var order []string
		repos.rtDocs.DeleteAllForUserFn = func(ctx context.Context, userID valueobject.UserID) error {
			order = append(order, "docs")
			return nil
		}
		repos.rtRows.DeleteAllForUserFn = func(ctx context.Context, userID valueobject.UserID) error {
			order = append(order, "rows")
			return nil
		}
		svc := NewAuthService(repos, testJWT(), testLogger())

		require.NoError(t, svc.LogoutAll(ctx, u.ID().String()))
		assert.Equal(t, []string{"docs", "rows"}, order)
	})
}
