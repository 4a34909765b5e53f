package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Codeplay77/otpvault/internal/domain/port/driven"
)

// setupMockRepo wires an AccountRepo over a sqlmock connection so driver and
// I/O faults can be injected. Both pools share the single mock; the repo
// cannot tell the difference.
func setupMockRepo(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return NewAccountRepo(&DB{Writer: conn, Reader: conn, path: "sqlmock"}), mock
}

func TestAccountRepo_InsertStorageFault(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts`)).
		WithArgs("user@example.com", "GitHub", []byte{0x01}, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Insert(context.Background(), "user@example.com", "GitHub", []byte{0x01})
	assert.ErrorIs(t, err, driven.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ListStorageFault(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, issuer, secret_ciphertext, created_at FROM accounts`)).
		WillReturnError(errors.New("database is locked"))

	_, err := repo.ListAll(context.Background())
	assert.ErrorIs(t, err, driven.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetStorageFault(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, issuer, secret_ciphertext, created_at FROM accounts WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnError(errors.New("disk I/O error"))

	got, err := repo.GetByID(context.Background(), 7)
	assert.Nil(t, got)
	// A driver fault is a fault, not the nil-result "absent" convention.
	assert.ErrorIs(t, err, driven.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_DeleteStorageFault(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnError(errors.New("disk I/O error"))

	err := repo.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, driven.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, driven.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ListScanFault(t *testing.T) {
	repo, mock := setupMockRepo(t)

	// A malformed created_at column surfaces as a storage fault rather than
	// a zero-time account.
	rows := sqlmock.NewRows([]string{"id", "name", "issuer", "secret_ciphertext", "created_at"}).
		AddRow(int64(1), "user@example.com", "", []byte{0x01}, "not-a-timestamp")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, issuer, secret_ciphertext, created_at FROM accounts`)).
		WillReturnRows(rows)

	_, err := repo.ListAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
