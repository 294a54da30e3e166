// Package errs provides the unified error type used across all of autostruct.
//
// Every subsystem (database drivers, catalog resolution, naming, emission,
// output publishing) wraps its native errors into *errs.Error before
// returning them to callers. Callers use the Is* predicates to handle errors
// without importing driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.KindConnection, "connect timed out", pgErr)
//
//	// In the runner — decide the exit path:
//	if errs.IsNameCollision(err) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error without exposing subsystem-specific codes.
// All backends (Postgres, MySQL, SQLite, MinIO, the filesystem) map their
// native errors to one of these kinds, giving callers a single consistent API.
//
// Every kind except KindUnknown is fatal for the run: the generator aborts
// with no partial output. Unsupported catalog types are not errors at all —
// they degrade to the opaque fallback and surface as report warnings.
type Kind int

const (
	KindUnknown       Kind = iota
	KindConnection         // cannot reach the database, or the connect timeout fired
	KindIntrospection      // a core catalog query failed mid-snapshot
	KindCatalogCycle       // a domain or composite transitively references itself
	KindNameCollision      // two source names resolve to one target identifier
	KindWrite              // staging or publishing the output failed
	KindInvalidConfig      // bad arguments from the caller or config file
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindIntrospection:
		return "introspection"
	case KindCatalogCycle:
		return "catalog_cycle"
	case KindNameCollision:
		return "name_collision"
	case KindWrite:
		return "write"
	case KindInvalidConfig:
		return "invalid_config"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all autostruct subsystems.
// Drivers and core stages produce it; the runner inspects it via the Is*
// predicates below.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message and no cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConnection reports whether err is a connectivity or timeout failure.
func IsConnection(err error) bool {
	return kindOf(err) == KindConnection
}

// IsIntrospection reports whether err is a failed core catalog query.
func IsIntrospection(err error) bool {
	return kindOf(err) == KindIntrospection
}

// IsCatalogCycle reports whether err is a self-referential user type.
func IsCatalogCycle(err error) bool {
	return kindOf(err) == KindCatalogCycle
}

// IsNameCollision reports whether err is an identifier collision between
// two distinct source names.
func IsNameCollision(err error) bool {
	return kindOf(err) == KindNameCollision
}

// IsWrite reports whether err happened while staging or publishing output.
func IsWrite(err error) bool {
	return kindOf(err) == KindWrite
}

// IsInvalidConfig reports whether err was caused by bad configuration.
func IsInvalidConfig(err error) bool {
	return kindOf(err) == KindInvalidConfig
}

// kindOf extracts the Kind from any error in the chain.
func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
