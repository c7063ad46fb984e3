package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport: database unreachable, connection dropped, context expired.
	KindTransport Kind = iota + 1
	// KindRejected: the database refused the statement (constraint, type, permission).
	KindRejected
	// KindNotFound: no row matched the id.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Sentinels for errors.Is. Any *Error of the matching kind compares equal.
var (
	ErrTransport = errors.New("transport error")
	ErrRejected  = errors.New("rejected")
	ErrNotFound  = errors.New("not found")
)

// Error is returned by every gateway operation that fails.
type Error struct {
	Collection string
	Op         Op
	Kind       Kind
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Collection != "" {
		return fmt.Sprintf("%s %s: %s", e.Collection, e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrRejected:
		return e.Kind == KindRejected
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// KindOf returns the kind of err, or 0 when err is not a gateway error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// NotFound builds a KindNotFound error; handy for test doubles.
func NotFound(collection string, op Op) *Error {
	return &Error{Collection: collection, Op: op, Kind: KindNotFound, Reason: "not found"}
}

// Rejected builds a KindRejected error carrying the server message.
func Rejected(collection string, op Op, err error) *Error {
	reason := "rejected"
	if op == OpCreate {
		reason = "creation rejected"
	}
	return &Error{Collection: collection, Op: op, Kind: KindRejected, Reason: reason, Err: err}
}

// Transport builds a KindTransport error.
func Transport(collection string, op Op, err error) *Error {
	return &Error{Collection: collection, Op: op, Kind: KindTransport, Reason: "database unavailable", Err: err}
}

func classifyWith(collection string, op Op, err error, kind Kind) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindTransport
	}
	switch kind {
	case KindNotFound:
		return &Error{Collection: collection, Op: op, Kind: KindNotFound, Reason: "not found", Err: err}
	case KindRejected:
		return Rejected(collection, op, err)
	}
	return Transport(collection, op, err)
}
