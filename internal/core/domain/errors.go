package domain

import "fmt"

// ValidationError covers user-correctable input problems (bad amount,
// self-transfer). Surfaced inline, never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means the remote directory has no match for what the user
// typed (unknown recipient account).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NetworkError wraps a failed call to the remote API. Reads degrade to
// cached data; writes surface a generic failure and wait for the user to
// re-invoke.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed local store operation. The system keeps
// running in memory-only mode; offline durability is lost until restart.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Canonical user-facing messages, kept identical across the wizard and the
// HTTP surface.
var (
	ErrSelfTransfer     = &ValidationError{Message: "You cannot send money to your own account."}
	ErrInvalidAmount    = &ValidationError{Message: "Please enter a valid amount."}
	ErrExceedsBalance   = &ValidationError{Message: "Amount exceeds your current balance."}
	ErrRecipientUnknown = &NotFoundError{Message: "Recipient account not found."}
)
