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

// UserRepository is the relational adapter for users. It is a write-behind
// mirror: application reads go to the document store.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

type userRow struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      string
	Age       *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password, role, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID().String(), u.Name(), u.Email().String(), u.Password().Hash(), u.Role().String(), u.Age(), u.CreatedAt(), u.UpdatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
		}
		return apperr.Database("failed to insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password, role, age, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id.String())
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password, role, age, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email.String())
	return scanUser(row)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, password, role, age, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, apperr.Database("failed to query users", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("failed to iterate users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password = $3, role = $4, age = $5, updated_at = $6
		WHERE id = $7
	`, u.Name(), u.Email().String(), u.Password().Hash(), u.Role().String(), u.Age(), u.UpdatedAt(), u.ID().String())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
		}
		return apperr.Database("failed to update user", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("USER_NOT_FOUND", "User not found")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id valueobject.UserID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return apperr.Database("failed to delete user", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("USER_NOT_FOUND", "User not found")
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email.String()).Scan(&exists)
	if err != nil {
		return false, apperr.Database("failed to check email existence", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var rec userRow
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Password, &rec.Role, &rec.Age, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, apperr.Database("failed to scan user", err)
	}
	return rowToUser(rec)
}

func rowToUser(rec userRow) (*entity.User, error) {
	id, err := valueobject.UserIDFromString(rec.ID)
	if err != nil {
		return nil, err
	}
	email, err := valueobject.NewEmail(rec.Email)
	if err != nil {
		return nil, err
	}
	password, err := valueobject.PasswordFromHash(rec.Password)
	if err != nil {
		return nil, err
	}
	role, err := valueobject.NewRole(rec.Role)
	if err != nil {
		return nil, err
	}
	return entity.ReconstructUser(id, rec.Name, email, password, role, rec.Age, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
