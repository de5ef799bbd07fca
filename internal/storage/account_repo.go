package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrAccountExists is returned when creating an account whose username is taken.
var ErrAccountExists = errors.New("account already exists")

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Get returns nil, nil when no account has that username.
func (r *AccountRepo) Get(ctx context.Context, username string) (*Account, error) {
	return getAccount(ctx, r.db, username)
}

func getAccount(ctx context.Context, q querier, username string) (*Account, error) {
	row := q.QueryRowContext(ctx, `
		SELECT username, first_name, last_name, password_hash, created_at, last_login_at
		FROM accounts WHERE username = ?
	`, username)

	var a Account
	var lastLogin sql.NullTime
	if err := row.Scan(&a.Username, &a.FirstName, &a.LastName, &a.PasswordHash, &a.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("account get: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return &a, nil
}

// Create inserts a new account, failing with ErrAccountExists if the username is taken.
func (r *AccountRepo) Create(ctx context.Context, a *Account) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := getAccount(ctx, tx, a.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAccountExists
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (username, first_name, last_name, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, a.Username, a.FirstName, a.LastName, a.PasswordHash, a.CreatedAt); err != nil {
			return fmt.Errorf("account insert: %w", err)
		}
		return nil
	})
}

func (r *AccountRepo) TouchLogin(ctx context.Context, username string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login_at = ? WHERE username = ?`, at, username); err != nil {
		return fmt.Errorf("account touch login: %w", err)
	}
	return nil
}

func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("account count: %w", err)
	}
	return n, nil
}
