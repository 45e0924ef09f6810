// Package service implements the task use cases on top of store.TaskStore.
//
// Services bind the store to the request's database session before every
// call, run read-modify-write operations (update, delete) inside one
// transaction, and wrap failures in TaskServiceError while keeping
// store.ErrTaskNotFound matchable with errors.Is.
package service
