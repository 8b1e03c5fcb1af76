package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitpool/internal/storage"
)

// ValidationError reports malformed or inconsistent input.
// It is always returned before anything is written.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a pool, member, expense or rule that does not exist,
// or a pool the caller is not part of.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a mutation the current state does not allow:
// touching a settled expense or default splits that would not sum to 100.
// An expense naming someone who has left the pool is one too.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return e.Err.Error() }

func (e *ConflictError) Unwrap() error { return e.Err }

// ForbiddenError reports a pool change reserved for the pool's admins.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("only a pool admin may %s", e.Action)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &ConflictError{Err: fmt.Errorf(format, args...)}
}

// fromStore translates storage sentinels into the ledger taxonomy.
// Anything else is returned unchanged.
func fromStore(err error, kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return &NotFoundError{Kind: kind, ID: id}
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, storage.ErrSettled), errors.Is(err, storage.ErrNotMember):
		return &ConflictError{Err: err}
	default:
		return err
	}
}
