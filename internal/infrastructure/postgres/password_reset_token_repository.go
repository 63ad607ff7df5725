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

type PasswordResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetTokenRepository(pool *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{pool: pool}
}

func (r *PasswordResetTokenRepository) Save(ctx context.Context, t *entity.PasswordResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID().String(), t.TokenHash(), t.UserID().String(), t.ExpiresAt(), t.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("RESET_TOKEN_EXISTS", "Password reset token already exists")
		}
		return apperr.Database("failed to insert password reset token", err)
	}
	return nil
}

func (r *PasswordResetTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, token_hash, user_id, expires_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`, tokenHash)
	return scanResetToken(row)
}

func (r *PasswordResetTokenRepository) Delete(ctx context.Context, id valueobject.PasswordResetTokenID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id.String())
	if err != nil {
		return apperr.Database("failed to delete password reset token", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("RESET_TOKEN_NOT_FOUND", "Password reset token not found")
	}
	return nil
}

func (r *PasswordResetTokenRepository) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID.String())
	if err != nil {
		return apperr.Database("failed to delete password reset tokens for user", err)
	}
	return nil
}

func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperr.Database("failed to purge expired password reset tokens", err)
	}
	return res.RowsAffected(), nil
}

func scanResetToken(row pgx.Row) (*entity.PasswordResetToken, error) {
	var (
		idStr     string
		tokenHash string
		userIDStr string
		expiresAt time.Time
		createdAt time.Time
	)
	if err := row.Scan(&idStr, &tokenHash, &userIDStr, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("RESET_TOKEN_NOT_FOUND", "Password reset token not found")
		}
		return nil, apperr.Database("failed to scan password reset token", err)
	}
	id, err := valueobject.PasswordResetTokenIDFromString(idStr)
	if err != nil {
		return nil, err
	}
	userID, err := valueobject.UserIDFromString(userIDStr)
	if err != nil {
		return nil, err
	}
	return entity.ReconstructPasswordResetToken(id, tokenHash, userID, expiresAt.UTC(), createdAt.UTC()), nil
}

var _ repository.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
