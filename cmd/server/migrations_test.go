package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/migrate"
	"github.com/phrazzld/task-tracker/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteMigration_UnknownCommand(t *testing.T) {
	db := testdb.OpenSQLite(t)
	migrator, err := migrate.New(db, config.DialectSQLite, nil)
	require.NoError(t, err)

	err = executeMigration(context.Background(), migrator, "sideways", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown migration command")
}

func TestMigrateCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("TASKS_DATABASE_URL", "sqlite://"+dbPath)
	t.Setenv("TASKS_SERVER_LOG_LEVEL", "error")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute(), out.String())
		return out.String()
	}

	assert.Equal(t, "0\n", run("migrate", "version"))
	assert.Contains(t, run("migrate", "status"), "pending")

	assert.Contains(t, run("migrate", "up"), "applied 00001_create_tasks.sql")
	assert.Contains(t, run("migrate", "up"), "no pending migrations")
	assert.Equal(t, "1\n", run("migrate", "version"))
	assert.Contains(t, run("migrate", "status"), "applied")

	assert.Contains(t, run("migrate", "down"), "rolled back 00001_create_tasks.sql")
	assert.Equal(t, "0\n", run("migrate", "version"))
}

func TestMigrateCreateCommand(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"migrate", "create", "add_due_date", "--dir", dir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `created migration "add_due_date"`)
	matches, err := filepath.Glob(filepath.Join(dir, "*_add_due_date.sql"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMigrateCommands_InvalidConfig(t *testing.T) {
	t.Setenv("TASKS_DATABASE_URL", "mysql://localhost/tasks")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "version"})
	assert.Error(t, cmd.Execute())
}
