// Package session scopes a database connection to a single unit of work.
//
// A Provider pins one pooled connection per Acquire call. HTTP requests get
// their session from the session middleware, which releases it when the
// handler returns, including when the handler panics. Code running outside
// a request (CLI commands, tests) falls back to the pool via DBFromContext.
package session
