package storage

import "github.com/banktechpro/banktech/internal/core/domain"

// Store is the on-device cache: a read-only mirror of remote transactions,
// the FIFO queue of transfers made while offline, and a small session scope
// (last-known user snapshot, activity log, categories, session tokens,
// idempotency records). Each method is one atomic unit of work against a
// single collection; nothing spans the mirror and the queue in one
// transaction.
type Store interface {
	// Transaction mirror, keyed by the remote id.
	GetAllCached() ([]domain.TransactionRecord, error)
	ReplaceAllCached(records []domain.TransactionRecord) error

	// Pending-transfer queue, keyed by a local auto-increment sequence.
	EnqueuePending(payload domain.TransactionRecord) (uint64, error)
	ListPending() ([]domain.PendingTransfer, error)
	RemovePending(localID uint64) error

	// Last-known authenticated user snapshot.
	SaveUser(user *domain.User) error
	LoadUser() (*domain.User, error)
	DeleteUser() error

	// Per-user append-only activity log, newest first on read.
	AppendActivity(entry domain.ActivityEntry) error
	ListActivity() ([]domain.ActivityEntry, error)
	ClearActivity() error

	// Categorize view state.
	ListCategories(userID string) ([]domain.Category, error)
	SaveCategories(userID string, categories []domain.Category) error

	// Session tokens, stored hashed.
	SaveSession(tokenHash string) error
	HasSession(tokenHash string) (bool, error)
	ClearSessions() error

	// Cached responses for the idempotency middleware.
	LookupIdempotent(key string) (*IdempotentResponse, error)
	SaveIdempotent(key string, resp *IdempotentResponse) error

	Close() error
}

// IdempotentResponse is a replayable copy of an earlier handler response.
type IdempotentResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}
