// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in the persist package.
//
// All stores map database-specific errors to the persist package's sentinel
// errors through MapError, so callers never depend on driver error types.
package postgres
