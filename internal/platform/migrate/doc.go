// Package migrate provisions the task schema with goose. It selects the
// embedded migration set for the configured dialect and exposes the
// operations the migrate CLI needs: up, down, status, version and create.
package migrate
