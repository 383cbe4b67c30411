package auth

import (
	"errors"
	"fmt"
)

// OpError is a typed operation error with a stable Op + Kind contract for callers/tests.
// Kind MUST be one of the sentinel kinds when applicable; Msg may include
// human-readable context but never secrets.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// FaultError wraps a store-level failure at the authenticator boundary.
// It marks a server fault (HTTP 500): the wrapped detail is for logs only
// and must never cross the API boundary to a client.
type FaultError struct {
	Op  string
	Err error
}

func (e FaultError) Error() string {
	return fmt.Sprintf("%s: persistence fault: %v", e.Op, e.Err)
}

func (e FaultError) Unwrap() error { return e.Err }

// fault standardizes persistence fault wrapping.
func fault(op string, err error) error {
	return FaultError{Op: op, Err: err}
}

// IsFault reports whether err is a persistence fault.
func IsFault(err error) bool {
	var fe FaultError
	return errors.As(err, &fe)
}

// IsNotFound reports whether err represents ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err represents ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
