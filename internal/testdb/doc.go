// Package testdb provides database helpers for tests.
//
// OpenSQLite returns a migrated, file-backed SQLite database that needs no
// external services, so every package can use it in ordinary unit tests.
// OpenPostgres returns a migrated PostgreSQL database, either from
// DATABASE_URL or from a throwaway testcontainers instance, and skips the
// test when neither is available.
//
// WithTx runs a test body inside a transaction that is always rolled back:
//
//	func TestTaskStore(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        taskStore := postgres.NewPostgresTaskStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
