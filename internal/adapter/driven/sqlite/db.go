package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// DB provides dual reader/writer database connections with WAL mode enabled.
// The writer connection is limited to a single connection to avoid "database is locked" errors.
// The reader connection pool allows up to 4 concurrent readers.
//
// A vault database belongs to exactly one process at a time: NewDB takes an
// exclusive advisory lock on a sidecar "<path>.lock" file and fails fast when
// another process already holds it.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
	lock   *os.File
}

// NewDB creates a new dual-connection SQLite database with WAL mode, busy timeout,
// synchronous NORMAL, foreign keys enabled, and a 64MB cache. All failures,
// including a lock held by another process, match driven.ErrStorageUnavailable.
func NewDB(dbPath string) (*DB, error) {
	lock, err := acquireLock(dbPath + ".lock")
	if err != nil {
		return nil, storeErr("lock database", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		dbPath,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		releaseLock(lock)
		return nil, storeErr("open writer", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		writer.Close()
		releaseLock(lock)
		return nil, storeErr("ping writer", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		releaseLock(lock)
		return nil, storeErr("open reader", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		reader.Close()
		writer.Close()
		releaseLock(lock)
		return nil, storeErr("ping reader", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
		lock:   lock,
	}, nil
}

// Close closes both reader and writer connections and releases the process
// lock. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	if err := releaseLock(db.lock); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("release lock: %w", err)
	}

	return firstErr
}
