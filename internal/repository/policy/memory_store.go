package policy

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"policyinsight/internal/types"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]types.Policy
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]types.Policy), now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, p types.Policy) (types.Policy, error) {
	if err := Validate(p); err != nil {
		return types.Policy{}, err
	}
	prepareInsert(&p, s.now)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (types.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return types.Policy{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]types.Policy, error) {
	f = f.Normalize()
	s.mu.RLock()
	out := make([]types.Policy, 0, len(s.byID))
	for _, p := range s.byID {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []types.Policy{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Active(_ context.Context) (types.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		best  types.Policy
		found bool
	)
	for _, p := range s.byID {
		if !isActive(p.Status) {
			continue
		}
		if !found || p.UpdatedAt.After(best.UpdatedAt) {
			best, found = p, true
		}
	}
	if !found {
		return types.Policy{}, ErrNotFound
	}
	return best, nil
}
