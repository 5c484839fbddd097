package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/leozw/domainy/internal/core"
)

const uniqueViolation = "23505"

func (db *DB) CreateUser(ctx context.Context, u *core.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :created_at, :updated_at)`

	_, err := db.NamedExecContext(ctx, query, u)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return core.ErrConflict
	}
	return err
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var u core.User
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	err := db.GetContext(ctx, &u, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
