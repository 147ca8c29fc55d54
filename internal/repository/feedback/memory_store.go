package feedback

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"policyinsight/internal/types"
)

// MemoryStore keeps rows in process. It is used by tests and when no
// database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []types.FeedbackRecord
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, rec types.FeedbackRecord) (types.FeedbackRecord, error) {
	prepareInsert(&rec, s.now)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cloneRecord(rec))
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (types.FeedbackRecord, error) {
	id = strings.TrimSpace(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.ID == id {
			return cloneRecord(r), nil
		}
	}
	return types.FeedbackRecord{}, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]types.FeedbackRecord, error) {
	f = f.Normalize()
	s.mu.RLock()
	matched := make([]types.FeedbackRecord, 0, len(s.rows))
	for _, r := range s.rows {
		if f.matches(r) {
			matched = append(matched, cloneRecord(r))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if f.Ascending {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if f.Offset >= len(matched) {
		return []types.FeedbackRecord{}, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(_ context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.rows {
		if f.matches(r) {
			n++
		}
	}
	return n, nil
}

// prepareInsert fills the id, timestamps and defaults a new row needs.
func prepareInsert(rec *types.FeedbackRecord, now func() time.Time) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	ts := now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = ts
	}
	rec.UpdatedAt = ts
	if rec.Sentiment == "" {
		rec.Sentiment = types.SentimentNeutral
	}
	if rec.Language == "" {
		rec.Language = types.LanguageEnglish
	}
	if rec.Nuances == nil {
		rec.Nuances = []string{}
	}
	if rec.EdgeCaseFlags == nil {
		rec.EdgeCaseFlags = []string{}
	}
	if rec.Summary == "" {
		rec.Summary = types.SummarizeText(rec.Text)
	}
}

func cloneRecord(r types.FeedbackRecord) types.FeedbackRecord {
	r.Nuances = append([]string{}, r.Nuances...)
	r.EdgeCaseFlags = append([]string{}, r.EdgeCaseFlags...)
	if r.Embedding != nil {
		r.Embedding = append([]float32(nil), r.Embedding...)
	}
	if r.SentimentConfidence != nil {
		c := *r.SentimentConfidence
		r.SentimentConfidence = &c
	}
	return r
}
