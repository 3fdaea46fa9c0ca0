package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/prodboard/internal/domain/model"
)

// MemoryStore keeps machine records in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]model.RawRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore seeded with data. The map is copied.
func NewMemoryStore(data map[string][]model.RawRecord) *MemoryStore {
	s := &MemoryStore{data: make(map[string][]model.RawRecord, len(data))}
	for m, recs := range data {
		s.Put(m, recs)
	}
	return s
}

// Put replaces the records of one machine.
func (s *MemoryStore) Put(machine string, records []model.RawRecord) {
	cp := make([]model.RawRecord, len(records))
	copy(cp, records)
	s.mu.Lock()
	s.data[machine] = cp
	s.mu.Unlock()
}

// Load returns a copy of the machine's records.
func (s *MemoryStore) Load(ctx context.Context, machine string) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.data[machine]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, machine)
	}
	out := make([]model.RawRecord, len(recs))
	copy(out, recs)
	return out, nil
}

// Machines lists the stored machines.
func (s *MemoryStore) Machines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]string, 0, len(s.data))
	for m := range s.data {
		out = append(out, m)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}
