package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/minwon/pkg/minwon/internalerr"
	"github.com/cognicore/minwon/pkg/minwon/store"
)

// Store is an in-memory implementation of store.Store for tests and
// single-process use.
type Store struct {
	mu         sync.RWMutex
	complaints map[string]store.Complaint
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{complaints: make(map[string]store.Complaint)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveComplaint inserts or replaces a complaint, keyed by ID.
func (s *Store) SaveComplaint(ctx context.Context, c store.Complaint) error {
	if c.ID == "" {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[c.ID] = copyComplaint(c)
	return nil
}

// GetComplaint implements store.Store.
func (s *Store) GetComplaint(ctx context.Context, id string) (store.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return store.Complaint{}, internalerr.ErrNotFound
	}
	return copyComplaint(c), nil
}

// RecentComplaints implements store.Store.
func (s *Store) RecentComplaints(ctx context.Context, limit int) ([]store.Complaint, error) {
	s.mu.RLock()
	out := make([]store.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		out = append(out, copyComplaint(c))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByTier implements store.Store.
func (s *Store) CountByTier(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, c := range s.complaints {
		counts[c.Tier]++
	}
	return counts, nil
}

func copyComplaint(c store.Complaint) store.Complaint {
	if c.Verdict != nil {
		v := *c.Verdict
		v.Sources = append([]string(nil), v.Sources...)
		c.Verdict = &v
	}
	return c
}
