package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, t *entity.RefreshToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID().String(), t.Token(), t.UserID().String(), t.ExpiresAt(), t.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("REFRESH_TOKEN_EXISTS", "Refresh token already exists")
		}
		return apperr.Database("failed to insert refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`, token)
	return scanRefreshToken(row)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id valueobject.RefreshTokenID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id.String())
	if err != nil {
		return apperr.Database("failed to delete refresh token", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return apperr.Database("failed to delete refresh token", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID.String())
	if err != nil {
		return apperr.Database("failed to delete refresh tokens for user", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperr.Database("failed to purge expired refresh tokens", err)
	}
	return res.RowsAffected(), nil
}

func scanRefreshToken(row pgx.Row) (*entity.RefreshToken, error) {
	var (
		idStr     string
		token     string
		userIDStr string
		expiresAt time.Time
		createdAt time.Time
	)
	if err := row.Scan(&idStr, &token, &userIDStr, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
		}
		return nil, apperr.Database("failed to scan refresh token", err)
	}
	id, err := valueobject.RefreshTokenIDFromString(idStr)
	if err != nil {
		return nil, err
	}
	userID, err := valueobject.UserIDFromString(userIDStr)
	if err != nil {
		return nil, err
	}
	return entity.ReconstructRefreshToken(id, token, userID, expiresAt.UTC(), createdAt.UTC()), nil
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
