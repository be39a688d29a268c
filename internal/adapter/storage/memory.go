package storage

import (
	"sort"
	"sync"

	"github.com/banktechpro/banktech/internal/core/domain"
)

// MemoryStore is the degraded fallback used when the bbolt file cannot be
// opened. Same contract as BoltStore, nothing survives a restart, so
// offline queuing becomes best-effort.
type MemoryStore struct {
	mu          sync.Mutex
	cached      map[string]domain.TransactionRecord
	pending     map[uint64]domain.TransactionRecord
	pendingSeq  uint64
	user        *domain.User
	activity    []domain.ActivityEntry
	categories  map[string][]domain.Category
	sessions    map[string]struct{}
	idempotency map[string]IdempotentResponse
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cached:      make(map[string]domain.TransactionRecord),
		pending:     make(map[uint64]domain.TransactionRecord),
		categories:  make(map[string][]domain.Category),
		sessions:    make(map[string]struct{}),
		idempotency: make(map[string]IdempotentResponse),
	}
}

func (s *MemoryStore) GetAllCached() ([]domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]domain.TransactionRecord, 0, len(s.cached))
	for _, rec := range s.cached {
		records = append(records, rec)
	}
	return records, nil
}

func (s *MemoryStore) ReplaceAllCached(records []domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = make(map[string]domain.TransactionRecord, len(records))
	for _, rec := range records {
		s.cached[rec.ID] = rec
	}
	return nil
}

func (s *MemoryStore) EnqueuePending(payload domain.TransactionRecord) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload.ID = ""
	s.pendingSeq++
	s.pending[s.pendingSeq] = payload
	return s.pendingSeq, nil
}

func (s *MemoryStore) ListPending() ([]domain.PendingTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.PendingTransfer, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.PendingTransfer{LocalID: id, Payload: s.pending[id]})
	}
	return out, nil
}

func (s *MemoryStore) RemovePending(localID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, localID)
	return nil
}

func (s *MemoryStore) SaveUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.user = &copied
	return nil
}

func (s *MemoryStore) LoadUser() (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	copied := *s.user
	return &copied, nil
}

func (s *MemoryStore) DeleteUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

func (s *MemoryStore) AppendActivity(entry domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, entry)
	return nil
}

func (s *MemoryStore) ListActivity() ([]domain.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActivityEntry, 0, len(s.activity))
	for i := len(s.activity) - 1; i >= 0; i-- {
		out = append(out, s.activity[i])
	}
	return out, nil
}

func (s *MemoryStore) ClearActivity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = nil
	return nil
}

func (s *MemoryStore) ListCategories(userID string) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Category(nil), s.categories[userID]...), nil
}

func (s *MemoryStore) SaveCategories(userID string, categories []domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[userID] = append([]domain.Category(nil), categories...)
	return nil
}

func (s *MemoryStore) SaveSession(tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = struct{}{}
	return nil
}

func (s *MemoryStore) HasSession(tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[tokenHash]
	return ok, nil
}

func (s *MemoryStore) ClearSessions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]struct{})
	return nil
}

func (s *MemoryStore) LookupIdempotent(key string) (*IdempotentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.idempotency[key]
	if !ok {
		return nil, nil
	}
	copied := resp
	return &copied, nil
}

func (s *MemoryStore) SaveIdempotent(key string, resp *IdempotentResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[key] = *resp
	return nil
}

func (s *MemoryStore) Close() error { return nil }
