package db

import (
	"errors"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrBadResponse   = errors.New("db: malformed engine response")
	ErrQueryRejected = errors.New("db: query rejected by engine")
)

// RejectedError carries the engine's reason for refusing a request (HTTP 400),
// typically a query-string that fails to parse.
type RejectedError struct {
	Type   string
	Reason string
}

func (e *RejectedError) Error() string {
	return ErrQueryRejected.Error() + ": " + e.Type + ": " + e.Reason
}

func (e *RejectedError) Unwrap() error { return ErrQueryRejected }

// Op constants name the engine API called, for error context.
const (
	OpSearch = "search"
	OpCount  = "count"
	OpPing   = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
// Every Error matches domain.ErrEngine.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is reports domain.ErrEngine as a match.
func (e *Error) Is(target error) bool { return target == domain.ErrEngine }
