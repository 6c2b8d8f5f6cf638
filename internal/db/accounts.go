package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail indicates the account email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// CreateAccount inserts a new recruiter account.
func (db *DB) CreateAccount(ctx context.Context, a *Account) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		a.ID, a.Name, a.Email, a.PasswordHash,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByEmail retrieves an account by email. Returns (nil, nil)
// when absent.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}
