package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/banktechpro/banktech/internal/core/domain"
)

// Bucket layout. One bucket per collection; the schema version in the meta
// bucket is the serialization contract for everything below it.
var (
	bucketTransactions = []byte("transactions")
	bucketPending      = []byte("pending_transactions")
	bucketSession      = []byte("session")
	bucketActivity     = []byte("activity")
	bucketCategories   = []byte("categories")
	bucketIdempotency  = []byte("idempotency_keys")
	bucketMeta         = []byte("meta")
)

const schemaVersion uint64 = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyUserSnapshot  = []byte("user")
)

// BoltStore implements Store on a single bbolt file. bbolt gives us the
// same shape the app needs: named collections, per-call transactions, and
// an auto-increment sequence for the queue.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (or creates) the store file, creates the buckets and stamps
// the schema version. A file written by a newer schema is refused rather
// than silently misread.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "open store", Err: err}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{
			bucketTransactions, bucketPending, bucketSession,
			bucketActivity, bucketCategories, bucketIdempotency, bucketMeta,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if raw := meta.Get(keySchemaVersion); raw != nil {
			if v := binary.BigEndian.Uint64(raw); v > schemaVersion {
				return fmt.Errorf("store schema v%d is newer than supported v%d", v, schemaVersion)
			}
			return nil
		}
		return meta.Put(keySchemaVersion, itob(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, &domain.PersistenceError{Op: "init store", Err: err}
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// GetAllCached returns the mirror in unspecified order; callers sort.
func (s *BoltStore) GetAllCached() ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransactions).ForEach(func(_, v []byte) error {
			var rec domain.TransactionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read cached transactions", Err: err}
	}
	return records, nil
}

// ReplaceAllCached clears and repopulates the mirror in one transaction, so
// a reader never sees a mix of two fetch generations.
func (s *BoltStore) ReplaceAllCached(records []domain.TransactionRecord) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketTransactions); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketTransactions)
		if err != nil {
			return err
		}
		for _, rec := range records {
			raw, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(rec.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "replace cached transactions", Err: err}
	}
	return nil
}

// EnqueuePending appends a transfer to the queue under the next sequence
// number and returns that number once the write is durable.
func (s *BoltStore) EnqueuePending(payload domain.TransactionRecord) (uint64, error) {
	// The queue owns key assignment; a server id must never sneak in here.
	payload.ID = ""

	var localID uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPending)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		raw, err := json.Marshal(domain.PendingTransfer{LocalID: seq, Payload: payload})
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), raw); err != nil {
			return err
		}
		localID = seq
		return nil
	})
	if err != nil {
		return 0, &domain.PersistenceError{Op: "enqueue pending transfer", Err: err}
	}
	return localID, nil
}

// ListPending returns the queue oldest first. Big-endian sequence keys make
// bucket order enqueue order.
func (s *BoltStore) ListPending() ([]domain.PendingTransfer, error) {
	var pending []domain.PendingTransfer
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPending).ForEach(func(_, v []byte) error {
			var p domain.PendingTransfer
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			pending = append(pending, p)
			return nil
		})
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list pending transfers", Err: err}
	}
	return pending, nil
}

// RemovePending deletes one queue entry. Deleting an absent key is a no-op.
func (s *BoltStore) RemovePending(localID uint64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPending).Delete(itob(localID))
	})
	if err != nil {
		return &domain.PersistenceError{Op: "remove pending transfer", Err: err}
	}
	return nil
}

func (s *BoltStore) SaveUser(user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return &domain.PersistenceError{Op: "save user snapshot", Err: err}
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(keyUserSnapshot, raw)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save user snapshot", Err: err}
	}
	return nil
}

// LoadUser returns nil with no error when no snapshot is stored.
func (s *BoltStore) LoadUser() (*domain.User, error) {
	var user *domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSession).Get(keyUserSnapshot)
		if raw == nil {
			return nil
		}
		user = &domain.User{}
		return json.Unmarshal(raw, user)
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load user snapshot", Err: err}
	}
	return user, nil
}

func (s *BoltStore) DeleteUser() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyUserSnapshot)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "delete user snapshot", Err: err}
	}
	return nil
}

func (s *BoltStore) AppendActivity(entry domain.ActivityEntry) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActivity)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), raw)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "append activity", Err: err}
	}
	return nil
}

// ListActivity returns entries newest first, matching the original feed.
func (s *BoltStore) ListActivity() ([]domain.ActivityEntry, error) {
	var entries []domain.ActivityEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivity).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e domain.ActivityEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list activity", Err: err}
	}
	return entries, nil
}

func (s *BoltStore) ClearActivity() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketActivity); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketActivity)
		return err
	})
	if err != nil {
		return &domain.PersistenceError{Op: "clear activity", Err: err}
	}
	return nil
}

func (s *BoltStore) ListCategories(userID string) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketCategories).Get([]byte(userID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &categories)
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list categories", Err: err}
	}
	return categories, nil
}

func (s *BoltStore) SaveCategories(userID string, categories []domain.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return &domain.PersistenceError{Op: "save categories", Err: err}
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCategories).Put([]byte(userID), raw)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save categories", Err: err}
	}
	return nil
}

func (s *BoltStore) SaveSession(tokenHash string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(sessionKey(tokenHash), []byte("1"))
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save session", Err: err}
	}
	return nil
}

func (s *BoltStore) HasSession(tokenHash string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketSession).Get(sessionKey(tokenHash)) != nil
		return nil
	})
	if err != nil {
		return false, &domain.PersistenceError{Op: "check session", Err: err}
	}
	return found, nil
}

func (s *BoltStore) ClearSessions() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		c := b.Cursor()
		var stale [][]byte
		prefix := []byte("token:")
		for k, _ := c.Seek(prefix); k != nil && len(k) > len(prefix) && string(k[:len(prefix)]) == "token:"; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "clear sessions", Err: err}
	}
	return nil
}

func (s *BoltStore) LookupIdempotent(key string) (*IdempotentResponse, error) {
	var resp *IdempotentResponse
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketIdempotency).Get([]byte(key))
		if raw == nil {
			return nil
		}
		resp = &IdempotentResponse{}
		return json.Unmarshal(raw, resp)
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "lookup idempotency key", Err: err}
	}
	return resp, nil
}

func (s *BoltStore) SaveIdempotent(key string, resp *IdempotentResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return &domain.PersistenceError{Op: "save idempotency key", Err: err}
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIdempotency).Put([]byte(key), raw)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save idempotency key", Err: err}
	}
	return nil
}

func sessionKey(tokenHash string) []byte {
	return []byte("token:" + tokenHash)
}

// itob encodes a sequence number big-endian so byte order equals numeric
// order inside a bucket.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
