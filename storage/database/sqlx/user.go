package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/user"
)

const uniqueViolation = "23505"

type identityRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r identityRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Role:         user.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Writer {
	return &userRepository{db: db}
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row identityRow
	const q = `SELECT id, name, role, is_active, password_hash, created_at, updated_at FROM identities WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting identity")
	}
	return row.toUser(), nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := identityRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Role:         string(usr.Role),
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
	const q = `INSERT INTO identities (id, name, role, is_active, password_hash, created_at, updated_at)
		VALUES (:id, :name, :role, :is_active, :password_hash, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return user.User{}, user.ErrIDExists
		}
		return user.User{}, errors.Wrap(err, "inserting identity")
	}
	return usr, nil
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id string, hash []byte, updatedAt time.Time) error {
	const q = `UPDATE identities SET password_hash = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, hash, updatedAt, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
