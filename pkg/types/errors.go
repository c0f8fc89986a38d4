package types

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories every component boundary
// converts backend-specific errors into.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindInvalidInput  Kind = "invalid_input"
	KindTransientIO   Kind = "transient_io"
	KindPermanentIO   Kind = "permanent_io"
	KindParseMiss     Kind = "parse_miss"
	KindTimeout       Kind = "timeout"
	KindCancelled     Kind = "cancelled"
	KindInternal      Kind = "internal"
)

// Error carries a Kind, an optional wrapped cause, and optional
// bucket/key/schema context for structured logging.
type Error struct {
	Kind     Kind
	Message  string
	Bucket   string
	Key      string
	SchemaID string
	Cause    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Bucket != "" || e.Key != "" {
		msg = fmt.Sprintf("%s (bucket=%s key=%s)", msg, e.Bucket, e.Key)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can branch with errors.Is(err, types.KindError(types.KindNotFound)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindError returns a sentinel *Error of the given Kind with no cause,
// suitable for errors.Is comparisons: errors.Is(err, types.KindError(types.KindNotFound)).
func KindError(k Kind) error { return &Error{Kind: k} }

// New builds an *Error with no wrapped cause.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds an *Error of the given Kind wrapping cause. The result
// always has Kind k, even when cause is itself an *Error of another Kind.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// WithContext returns a copy of e with bucket/key/schema context set.
func (e *Error) WithContext(bucket, key, schemaID string) *Error {
	cp := *e
	cp.Bucket = bucket
	cp.Key = key
	cp.SchemaID = schemaID
	return &cp
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// defaulting to KindInternal for unrecognized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retriable reports whether err's Kind is one the site that owns the
// action should retry (TransientIO, Timeout). Callers wanting queue
// redelivery semantics instead should simply not ack — see pkg/queue.
func Retriable(err error) bool {
	switch KindOf(err) {
	case KindTransientIO, KindTimeout:
		return true
	default:
		return false
	}
}
