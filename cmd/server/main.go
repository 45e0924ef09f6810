// Package main implements the task-tracker command: the HTTP API server and
// the schema migration tool.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
