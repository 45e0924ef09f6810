// Package postgres provides the PostgreSQL implementation of store.TaskStore
// and the embedded goose migrations that provision its schema.
// It handles query execution, mapping between domain.Task and table rows,
// and translation of pgconn error codes into store sentinel errors.
package postgres
