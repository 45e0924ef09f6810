// Package api handles incoming HTTP requests for tasks: decoding and
// validating payloads, calling the task service and formatting responses.
//
// Validation failures become 422 responses with per-field details, a
// missing task becomes 404 "Task not found", and anything else becomes a
// 500 whose details only reach the logs.
package api
