package journal

import (
	"errors"
	"fmt"
)

// Kind classifies a journal failure. The mapping to user-facing
// presentation (HTTP status, CLI message) belongs to callers.
type Kind int

const (
	// KindValidation rejects bad input, such as an empty body.
	KindValidation Kind = iota + 1
	// KindNotFound means no entry exists for the requested id.
	KindNotFound
	// KindStorage is an I/O or consistency failure in the store.
	KindStorage
	// KindFormat means a stored date string is unreadable. Previously
	// accepted data going bad is a server fault, not a user error.
	KindFormat
	// KindTimestamp means a stored timestamp is unreadable.
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage"
	case KindFormat:
		return "format"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Error is a journal failure tagged with its kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errf(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func kindOf(err error) Kind {
	var je *Error
	if errors.As(err, &je) {
		return je.Kind
	}
	return 0
}

// IsNotFound reports whether err is a journal not-found failure.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsValidation reports whether err is a journal validation failure.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}
