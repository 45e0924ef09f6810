package testdb

import (
	"os"
	"os/exec"
)

// EnvDatabaseURL names the variable that points tests at an existing
// PostgreSQL database instead of a container.
const EnvDatabaseURL = "DATABASE_URL"

// GetTestDatabaseURL returns the externally provided test database URL, if any.
func GetTestDatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// dockerAvailable reports whether a Docker daemon is reachable.
// testcontainers-go panics rather than returning an error without one.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}
