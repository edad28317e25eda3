package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps batches in process. Used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[uuid.UUID]*Batch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[uuid.UUID]*Batch)}
}

func (s *MemoryStore) SaveBatch(_ context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[b.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBatch, b.ID)
	}
	cp := *b
	s.batches[b.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id uuid.UUID) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// ListBatches returns matching batches, newest first.
func (s *MemoryStore) ListBatches(_ context.Context, filter BatchFilter) ([]*Batch, error) {
	s.mu.RLock()
	out := make([]*Batch, 0, len(s.batches))
	for _, b := range s.batches {
		if filter.RespondentID != "" && b.RespondentID != filter.RespondentID {
			continue
		}
		if filter.Strategy != "" && b.Strategy != filter.Strategy {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
