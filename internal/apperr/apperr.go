// internal/apperr/apperr.go
package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Kind distinguishes the recoverable classes of failure a service
// operation can report. Handlers translate kinds to transport statuses;
// services never pick statuses themselves.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error carries a kind, the entity it concerns, and an optional cause.
type Error struct {
	Kind   Kind
	Entity string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Entity != "" {
		msg = e.Entity
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports missing or malformed caller input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound reports that the referenced entity does not exist.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Msg: entity + " not found"}
}

// Conflict reports a failed precondition about mutable state.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Transient reports a store connectivity or timeout fault; the enclosing
// transaction is guaranteed rolled back, so the caller may retry.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// Postgres error classes we care about. Unique/check/foreign-key violations
// are state conflicts; serialization failures and deadlocks are lost races
// on a row, which the contract also surfaces as conflicts.
const (
	pqClassIntegrityViolation  = "23"
	pqClassTxRollback          = "40"
	pqCodeForeignKeyViolation  = "23503"
	pqCodeUniqueViolation      = "23505"
	pqClassConnectionException = "08"
)

// Classify folds a raw store error into the taxonomy. msg names the
// operation for the wrapped message; already-classified errors pass
// through unchanged.
func Classify(msg string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqCodeUniqueViolation:
			return &Error{Kind: KindConflict, Msg: msg + ": already exists", Err: err}
		case pqErr.Code == pqCodeForeignKeyViolation:
			return &Error{Kind: KindNotFound, Msg: msg + ": referenced row missing", Err: err}
		case pqErr.Code.Class() == pqClassIntegrityViolation,
			pqErr.Code.Class() == pqClassTxRollback:
			return &Error{Kind: KindConflict, Msg: msg, Err: err}
		case pqErr.Code.Class() == pqClassConnectionException:
			return Transient(msg, err)
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone),
		errors.As(err, &netErr):
		return Transient(msg, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
