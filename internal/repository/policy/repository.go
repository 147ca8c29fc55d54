package policy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"policyinsight/internal/repository/sqlstore"
	"policyinsight/internal/types"
)

// Store persists policies.
type Store interface {
	Insert(ctx context.Context, p types.Policy) (types.Policy, error)
	Get(ctx context.Context, id string) (types.Policy, error)
	List(ctx context.Context, f Filter) ([]types.Policy, error)
	// Active returns the most recently updated active or published policy.
	Active(ctx context.Context) (types.Policy, error)
}

var (
	ErrNotFound       = errors.New("policy not found")
	ErrSchemaMismatch = sqlstore.ErrSchemaMismatch
)

const (
	DefaultLimit   = 100
	MaxLimit       = 200
	DefaultVersion = "1.0"
)

// activeStatuses are the statuses Active considers, in no particular order.
var activeStatuses = []types.PolicyStatus{types.PolicyActive, types.PolicyPublished}

// Filter selects policies for List. Newest first.
type Filter struct {
	Status types.PolicyStatus
	Limit  int
	Offset int
}

func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Validate rejects a policy without a title or with an unknown status.
func Validate(p types.Policy) error {
	if strings.TrimSpace(p.Title) == "" {
		return types.Invalid("title", "title is required")
	}
	if p.Status != "" && !p.Status.Valid() {
		return types.Invalid("status", "unknown status %q", p.Status)
	}
	return nil
}

func prepareInsert(p *types.Policy, now func() time.Time) {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	if p.Status == "" {
		p.Status = types.PolicyDraft
	}
	ts := now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts
}

func isActive(s types.PolicyStatus) bool {
	for _, a := range activeStatuses {
		if s == a {
			return true
		}
	}
	return false
}
