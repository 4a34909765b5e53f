package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Codeplay77/otpvault/internal/domain/model"
	"github.com/Codeplay77/otpvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
// Secret ciphertext is persisted as an opaque BLOB; encryption and decryption
// happen above the port boundary, so this adapter never sees plaintext.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Insert stores a new account and returns the id SQLite assigned to it.
// The accounts table uses AUTOINCREMENT, so ids are monotonic and never
// reused after deletes.
func (r *AccountRepo) Insert(ctx context.Context, name, issuer string, secretCiphertext []byte) (int64, error) {
	const query = `INSERT INTO accounts (name, issuer, secret_ciphertext, created_at) VALUES (?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query, name, issuer, secretCiphertext, time.Now().UTC())
	if err != nil {
		return 0, storeErr(fmt.Sprintf("insert account %q", name), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeErr("read inserted id", err)
	}

	return id, nil
}

// GetByID retrieves an account by id. Returns nil, nil if the account does
// not exist.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	const query = `SELECT id, name, issuer, secret_ciphertext, created_at FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(fmt.Sprintf("get account %d", id), err)
	}

	return account, nil
}

// ListAll returns all accounts in insertion order.
func (r *AccountRepo) ListAll(ctx context.Context) ([]model.Account, error) {
	const query = `SELECT id, name, issuer, secret_ciphertext, created_at FROM accounts ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr("scan account", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate accounts", err)
	}

	return accounts, nil
}

// Delete removes an account by id. Returns ErrAccountNotFound if the account
// does not exist.
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM accounts WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return storeErr(fmt.Sprintf("delete account %d", id), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("check rows affected", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete account %d: %w", id, driven.ErrAccountNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*model.Account, error) {
	var account model.Account
	var createdAt string

	err := s.Scan(&account.ID, &account.Name, &account.Issuer, &account.SecretCiphertext, &createdAt)
	if err != nil {
		return nil, err
	}

	account.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &account, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

// storeErr tags an operation failure with the port sentinel so callers can
// match driven.ErrStorageUnavailable while logs keep the cause.
func storeErr(op string, err error) error {
	return errors.Join(driven.ErrStorageUnavailable, fmt.Errorf("%s: %w", op, err))
}
