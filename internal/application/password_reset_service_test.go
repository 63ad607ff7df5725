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

func TestPasswordResetRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email yields empty result, not an error", func(t *testing.T) {
		repos := newMockRepos()
		repos.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return nil, notFound("USER_NOT_FOUND")
		}
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		res, err := svc.Request(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, res.Token)
		assert.Nil(t, res.ExpiresAt)
	})

	t.Run("supersedes prior tokens and stores only the hash", func(t *testing.T) {
		u := newTestUser(t, "reset@example.com")
		repos := newMockRepos()
		var order []string
		var saved *entity.PasswordResetToken
		repos.userDocs.FindByEmailFn = func(ctx context.Context, email valueobject.Email) (*entity.User, error) {
			return u, nil
		}
		repos.prDocs.DeleteAllForUserFn = func(ctx context.Context, userID valueobject.UserID) error {
			order = append(order, "purge-docs")
			return nil
		}
		repos.prRows.DeleteAllForUserFn = func(ctx context.Context, userID valueobject.UserID) error {
			order = append(order, "purge-rows")
			return nil
		}
		repos.prDocs.SaveFn = func(ctx context.Context, tok *entity.PasswordResetToken) error {
			order = append(order, "save-docs")
			saved = tok
			return nil
		}
		repos.prRows.SaveFn = func(ctx context.Context, tok *entity.PasswordResetToken) error {
			order = append(order, "save-rows")
			return nil
		}
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		res, err := svc.Request(ctx, "reset@example.com")
		require.NoError(t, err)
		require.NotNil(t, res.Token)
		require.NotNil(t, saved)

		assert.Equal(t, []string{"purge-docs", "purge-rows", "save-docs", "save-rows"}, order)
		// The persisted record holds the hash, never the raw token.
		assert.Equal(t, helpers.HashToken(*res.Token), saved.TokenHash())
		assert.NotEqual(t, *res.Token, saved.TokenHash())
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), saved.ExpiresAt(), 5*time.Second)
	})
}

func TestPasswordResetReset(t *testing.T) {
	ctx := context.Background()

	newToken := func(t *testing.T, raw string, userID valueobject.UserID, expiresAt time.Time) *entity.PasswordResetToken {
		t.Helper()
		tok, err := entity.NewPasswordResetToken(helpers.HashToken(raw), userID, expiresAt)
		require.NoError(t, err)
		return tok
	}

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		repos := newMockRepos()
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return nil, notFound("RESET_TOKEN_NOT_FOUND")
		}
		repos.prRows.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return nil, notFound("RESET_TOKEN_NOT_FOUND")
		}
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		err := svc.Reset(ctx, "bogus", "N3wSecret!pw")
		require.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		assert.Equal(t, "Invalid or expired reset token", apperr.From(err).Message)
	})

	t.Run("expired token is purged and rejected", func(t *testing.T) {
		u := newTestUser(t, "late@example.com")
		tok := newToken(t, "raw-token", u.ID(), time.Now().Add(-time.Minute))

		repos := newMockRepos()
		purged := false
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return tok, nil
		}
		repos.prDocs.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error {
			purged = true
			return nil
		}
		repos.prRows.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error { return nil }
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		err := svc.Reset(ctx, "raw-token", "N3wSecret!pw")
		require.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		assert.True(t, purged)
	})

	t.Run("successful reset changes the password and consumes the token", func(t *testing.T) {
		u := newTestUser(t, "happy@example.com")
		tok := newToken(t, "raw-token", u.ID(), time.Now().Add(time.Hour))

		repos := newMockRepos()
		consumed := false
		var updated *entity.User
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			require.Equal(t, helpers.HashToken("raw-token"), hash)
			return tok, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.userDocs.UpdateFn = func(ctx context.Context, usr *entity.User) error {
			updated = usr
			return nil
		}
		repos.userRows.UpdateFn = func(ctx context.Context, usr *entity.User) error { return nil }
		repos.prDocs.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error {
			consumed = true
			return nil
		}
		repos.prRows.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error { return nil }
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		require.NoError(t, svc.Reset(ctx, "raw-token", "N3wSecret!pw"))
		require.NotNil(t, updated)
		assert.True(t, updated.Password().Compare("N3wSecret!pw"))
		assert.True(t, consumed)
	})

	t.Run("reset fails when the token cannot be consumed", func(t *testing.T) {
		u := newTestUser(t, "sticky@example.com")
		tok := newToken(t, "raw-token", u.ID(), time.Now().Add(time.Hour))

		repos := newMockRepos()
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return tok, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.userDocs.UpdateFn = func(ctx context.Context, usr *entity.User) error { return nil }
		repos.userRows.UpdateFn = func(ctx context.Context, usr *entity.User) error { return nil }
		repos.prDocs.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error {
			return apperr.Database("delete failed", errors.New("es down"))
		}
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		// A still-live token would let the reset run twice.
		err := svc.Reset(ctx, "raw-token", "N3wSecret!pw")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindDatabase))
	})

	t.Run("falls back to the relational mirror when the document store misses", func(t *testing.T) {
		u := newTestUser(t, "fallback@example.com")
		tok := newToken(t, "raw-token", u.ID(), time.Now().Add(time.Hour))

		repos := newMockRepos()
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return nil, notFound("RESET_TOKEN_NOT_FOUND")
		}
		repos.prRows.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return tok, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return nil, notFound("USER_NOT_FOUND")
		}
		repos.userRows.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		repos.userDocs.UpdateFn = func(ctx context.Context, usr *entity.User) error { return nil }
		repos.userRows.UpdateFn = func(ctx context.Context, usr *entity.User) error { return nil }
		repos.prDocs.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error { return nil }
		repos.prRows.DeleteFn = func(ctx context.Context, id valueobject.PasswordResetTokenID) error { return nil }
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		require.NoError(t, svc.Reset(ctx, "raw-token", "N3wSecret!pw"))
	})

	t.Run("weak replacement password is rejected before any write", func(t *testing.T) {
		u := newTestUser(t, "weak@example.com")
		tok := newToken(t, "raw-token", u.ID(), time.Now().Add(time.Hour))

		repos := newMockRepos()
		repos.prDocs.FindByTokenHashFn = func(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
			return tok, nil
		}
		repos.userDocs.FindByIDFn = func(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
			return u, nil
		}
		svc := NewPasswordResetService(repos, 30*time.Minute, testLogger())

		err := svc.Reset(ctx, "raw-token", "short")
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
