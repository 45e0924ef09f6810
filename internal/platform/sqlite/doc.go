// Package sqlite provides an embedded SQLite implementation of store.TaskStore
// backed by modernc.org/sqlite, a cgo-free driver registered as "sqlite".
//
// The schema mirrors the PostgreSQL one. AUTOINCREMENT keeps ids from being
// reused after the highest row is deleted. Callers must limit the pool to a
// single open connection.
package sqlite
