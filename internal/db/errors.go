package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrNoRows      = errors.New("db: no rows")
	ErrConstraint  = errors.New("db: constraint violation")
)

// Op constants name the failing operation for error context.
const (
	OpGet     = "GET"
	OpSet     = "SET"
	OpPing    = "PING"
	OpOpen    = "OPEN"
	OpMigrate = "MIGRATE"
	OpSelect  = "SELECT"
	OpCount   = "COUNT"
	OpInsert  = "INSERT"
	OpTx      = "TX"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
