package feedback

import (
	"context"
	"errors"

	"policyinsight/internal/repository/sqlstore"
	"policyinsight/internal/types"
)

// Store persists feedback rows.
type Store interface {
	Insert(ctx context.Context, rec types.FeedbackRecord) (types.FeedbackRecord, error)
	Get(ctx context.Context, id string) (types.FeedbackRecord, error)
	List(ctx context.Context, f Filter) ([]types.FeedbackRecord, error)
	Count(ctx context.Context, f Filter) (int, error)
}

var (
	ErrNotFound = errors.New("feedback not found")
	// ErrSchemaMismatch aliases the shared sentinel so callers can match
	// it without importing sqlstore.
	ErrSchemaMismatch = sqlstore.ErrSchemaMismatch
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filter selects rows for List and Count. Newest rows come first unless
// Ascending is set. Limit 0 means no limit.
type Filter struct {
	PolicyID  string
	Sentiment types.Sentiment
	Language  types.Language
	Limit     int
	Offset    int
	Ascending bool
}

// Normalize clamps Limit to MaxLimit and Offset to >= 0.
func (f Filter) Normalize() Filter {
	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (f Filter) matches(r types.FeedbackRecord) bool {
	if f.PolicyID != "" && r.PolicyID != f.PolicyID {
		return false
	}
	if f.Sentiment != "" && r.Sentiment != f.Sentiment {
		return false
	}
	if f.Language != "" && r.Language != f.Language {
		return false
	}
	return true
}
