package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Kind classifies a store failure so callers can switch on it instead of inspecting messages.
type Kind int

// Error kinds reported by the store.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidArgument
	KindPermissionDenied
	KindAborted
	KindUnavailable
	KindCanceled
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindNotFound:         "not found",
	KindAlreadyExists:    "already exists",
	KindInvalidArgument:  "invalid argument",
	KindPermissionDenied: "permission denied",
	KindAborted:          "aborted",
	KindUnavailable:      "unavailable",
	KindCanceled:         "canceled",
	KindInternal:         "internal",
}

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a store failure tagged with its Kind.
type Error struct {
	Kind       Kind
	Op         string // Operation that failed, e.g. "get" or "update"
	Collection string
	ID         string
	Err        error // Underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Collection != "" {
		msg += " (" + e.Collection
		if e.ID != "" {
			msg += "/" + e.ID
		}
		msg += ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Op == "" && t.Collection == "" && e.Kind == t.Kind
	}
	return false
}

// Sentinel errors.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrAborted          = &Error{Kind: KindAborted}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
	ErrCanceled         = &Error{Kind: KindCanceled}
)

// KindOf returns the Kind of err. Errors that did not come from the store report KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// wrap tags err with a kind derived from badger and context errors.
// Errors that are already tagged keep their kind.
func wrap(op, collection, id string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		if storeErr.Op == "" {
			return &Error{Kind: storeErr.Kind, Op: op, Collection: collection, ID: id, Err: storeErr.Err}
		}
		return err
	}

	kind := KindInternal
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		kind = KindNotFound
	case errors.Is(err, badger.ErrDBClosed):
		kind = KindUnavailable
	case errors.Is(err, badger.ErrConflict):
		kind = KindAborted
	case errors.Is(err, badger.ErrReadOnlyTxn), errors.Is(err, badger.ErrBlockedWrites):
		kind = KindPermissionDenied
	case errors.Is(err, badger.ErrEmptyKey), errors.Is(err, badger.ErrInvalidKey):
		kind = KindInvalidArgument
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = KindCanceled
	}

	return &Error{Kind: kind, Op: op, Collection: collection, ID: id, Err: err}
}
