package kvrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ronghua-heritage/storefront/internal/platform/kv"
)

// Error implements repositories.RepositoryError for kv backed repositories.
type Error struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the error represents a missing record.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a rejected write.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable reports whether the error represents a store outage.
func (e *Error) IsUnavailable() bool {
	return e != nil && e.unavailable
}

func notFoundError(op string) *Error {
	return &Error{op: op, err: errors.New("record not found"), notFound: true}
}

// wrapError annotates store errors with repository semantics. Context
// cancellations are passed through untouched so callers can test for them.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var repoErr *Error
	if errors.As(err, &repoErr) {
		if op != "" && repoErr.op == "" {
			repoErr.op = op
		}
		return repoErr
	}

	e := &Error{op: op, err: err}
	if errors.Is(err, kv.ErrInvalidKey) {
		e.conflict = true
	} else {
		e.unavailable = true
	}
	return e
}
