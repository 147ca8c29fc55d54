// Package policy serves policy reads enriched with feedback counts.
package policy

import (
	"context"
	"fmt"
	"strings"

	feedbackrepo "policyinsight/internal/repository/feedback"
	policyrepo "policyinsight/internal/repository/policy"
	"policyinsight/internal/logging"
	"policyinsight/internal/types"
)

// Service implements policy reads and creation.
type Service struct {
	policies policyrepo.Store
	feedback feedbackrepo.Store
}

func New(policies policyrepo.Store, feedback feedbackrepo.Store) *Service {
	return &Service{policies: policies, feedback: feedback}
}

// List is one page of policies.
type List struct {
	Data  []types.Policy `json:"data"`
	Total int            `json:"total"`
}

// CreateRequest accepts both fullText and full_text.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FullText    string `json:"fullText"`
	FullTextAlt string `json:"full_text"`
	Category    string `json:"category"`
	Version     string `json:"version"`
	Status      string `json:"status"`
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) (List, error) {
	f := policyrepo.Filter{Status: types.PolicyStatus(strings.ToLower(strings.TrimSpace(status))), Limit: limit, Offset: offset}
	if f.Status != "" && !f.Status.Valid() {
		return List{}, types.Invalid("status", "unknown status %q", status)
	}
	rows, err := s.policies.List(ctx, f)
	if err != nil {
		return List{}, fmt.Errorf("list policies: %w", err)
	}
	for i := range rows {
		s.enrich(ctx, &rows[i])
	}
	return List{Data: rows, Total: len(rows)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (types.Policy, error) {
	p, err := s.policies.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return types.Policy{}, err
	}
	s.enrich(ctx, &p)
	return p, nil
}

// Active returns the current active or published policy.
func (s *Service) Active(ctx context.Context) (types.Policy, error) {
	p, err := s.policies.Active(ctx)
	if err != nil {
		return types.Policy{}, err
	}
	s.enrich(ctx, &p)
	return p, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (types.Policy, error) {
	full := req.FullText
	if full == "" {
		full = req.FullTextAlt
	}
	p := types.Policy{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		FullText:    full,
		Category:    strings.TrimSpace(req.Category),
		Version:     strings.TrimSpace(req.Version),
		Status:      types.PolicyStatus(strings.ToLower(strings.TrimSpace(req.Status))),
	}
	if err := policyrepo.Validate(p); err != nil {
		return types.Policy{}, err
	}
	saved, err := s.policies.Insert(ctx, p)
	if err != nil {
		return types.Policy{}, fmt.Errorf("create policy: %w", err)
	}
	logging.Info("policy created", "id", saved.ID, "status", saved.Status)
	s.enrich(ctx, &saved)
	return saved, nil
}

// enrich fills FeedbackCount. A count failure leaves it at zero.
func (s *Service) enrich(ctx context.Context, p *types.Policy) {
	if s.feedback == nil {
		return
	}
	n, err := s.feedback.Count(ctx, feedbackrepo.Filter{PolicyID: p.ID})
	if err != nil {
		logging.Warn("feedback count failed", "policy", p.ID, "err", err)
		return
	}
	p.FeedbackCount = n
}
