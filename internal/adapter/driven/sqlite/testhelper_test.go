package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB creates a named shared in-memory vault database with the
// accounts schema applied. Writer and reader connections see the same
// in-memory database via cache=shared, mirroring the dual-connection layout
// of a real vault file. The name comes from t.Name() so parallel tests never
// share state.
//
// No process lock is taken here: in-memory databases are invisible to other
// processes, and a sidecar lock file would only make parallel tests fight
// each other.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so subtests ("TestX/case") stay a single
	// URI filename component instead of growing path separators or being
	// misread as query parameters. WAL does not apply to in-memory databases,
	// so that pragma is omitted.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		url.PathEscape(t.Name()),
	)

	writer := openTestConn(t, dsn, 1)
	reader := openTestConn(t, dsn, 4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

// openTestConn opens one connection pool against the shared test database and
// registers its cleanup. Pools are closed individually because the test DB
// never owns a lock file.
func openTestConn(t *testing.T, dsn string, maxConns int) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	conn.SetMaxOpenConns(maxConns)
	if err := conn.PingContext(context.Background()); err != nil {
		t.Fatalf("ping test db: %v", err)
	}

	return conn
}
