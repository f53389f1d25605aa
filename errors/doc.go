// Package errors provides the structured error type shared by guidegen
// packages. An AppError carries a machine-readable code, an HTTP status,
// and a retryable flag, and serializes to an RFC 7807 style body.
package errors
