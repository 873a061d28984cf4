package sqliteplus

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of an Error.
type Kind int

// Failure classes reported by the engine and the query binder.
const (
	// KindNone is the zero Kind; it never appears on a returned Error.
	KindNone Kind = iota

	// KindOpenFailed indicates the underlying engine could not open or
	// create the database file.
	KindOpenFailed

	// KindAlreadyOpen indicates Open was called on an engine that already
	// holds a connection. The existing connection remains usable.
	KindAlreadyOpen

	// KindBindingFailed indicates a Query referenced a placeholder with no
	// bound value.
	KindBindingFailed

	// KindNotConnected indicates Exec or Commit was called with no open
	// connection.
	KindNotConnected

	// KindExecutionFailed indicates the underlying engine rejected or
	// failed partway through a statement. The wrapped error carries the
	// engine's own diagnostic.
	KindExecutionFailed
)

// Sentinel errors for each Kind, for use with errors.Is.
var (
	ErrOpenFailed      = errors.New("sqliteplus: unable to open database")
	ErrAlreadyOpen     = errors.New("sqliteplus: database already open")
	ErrBindingFailed   = errors.New("sqliteplus: query binding failed")
	ErrNotConnected    = errors.New("sqliteplus: no database connected")
	ErrExecutionFailed = errors.New("sqliteplus: statement execution failed")
)

var kindSentinels = map[Kind]error{
	KindOpenFailed:      ErrOpenFailed,
	KindAlreadyOpen:     ErrAlreadyOpen,
	KindBindingFailed:   ErrBindingFailed,
	KindNotConnected:    ErrNotConnected,
	KindExecutionFailed: ErrExecutionFailed,
}

// Error is a structured failure value carrying the failure class and, where
// available, the unresolved placeholder key or the underlying engine error.
type Error struct {
	// Kind is the failure class.
	Kind Kind

	// Key is the unresolved placeholder key for KindBindingFailed errors.
	Key string

	// Err is the underlying cause, when one exists.
	Err error
}

// Error renders a human-readable message. Execution failures carry the
// underlying engine's diagnostic text verbatim.
func (e *Error) Error() string {
	switch e.Kind {
	case KindOpenFailed:
		if e.Err != nil {
			return fmt.Sprintf("unable to open database: %v", e.Err)
		}
		return "unable to open database"
	case KindAlreadyOpen:
		return "database already open, create a new engine for a new database"
	case KindBindingFailed:
		if e.Key != "" {
			return fmt.Sprintf("query binding failed: no value bound for %q", e.Key)
		}
		return "query binding failed"
	case KindNotConnected:
		return "no database connected"
	case KindExecutionFailed:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "statement execution failed"
	default:
		return "unknown error"
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching this error's Kind,
// making errors.Is(err, ErrBindingFailed) and friends work.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}
