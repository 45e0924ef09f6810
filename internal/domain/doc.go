// Package domain contains the Task entity, the input shape accepted for
// creating and replacing tasks, and the validation errors shared by every
// layer above storage.
package domain
