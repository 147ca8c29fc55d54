// Package feedback validates, analyzes and stores feedback submissions.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	feedbackrepo "policyinsight/internal/repository/feedback"
	"policyinsight/internal/logging"
	"policyinsight/internal/projection"
	"policyinsight/internal/types"
)

// MaxTextLength bounds a single submission, in runes.
const MaxTextLength = 10000

// Analyzer derives the analysis persisted with each submission.
type Analyzer interface {
	Analyze(ctx context.Context, text string) types.FeedbackAnalysis
}

// Service implements feedback submission and reads.
type Service struct {
	store    feedbackrepo.Store
	analyzer Analyzer
}

// New creates a feedback service backed by the given store.
func New(store feedbackrepo.Store, analyzer Analyzer) *Service {
	return &Service{store: store, analyzer: analyzer}
}

// SubmitRequest is one incoming submission.
type SubmitRequest struct {
	Text            string `json:"text"`
	StakeholderType string `json:"stakeholderType,omitempty"`
	Sector          string `json:"sector,omitempty"`
	PolicyID        string `json:"policyId,omitempty"`
}

// Validate rejects blank or oversized text.
func (r SubmitRequest) Validate() error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return types.Invalid("text", "text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return types.Invalid("text", "text exceeds %d characters", MaxTextLength)
	}
	return nil
}

// Submit analyzes and persists one submission. Only validation and storage
// failures are returned; provider trouble degrades inside the analyzer.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (types.FeedbackRecord, error) {
	if err := req.Validate(); err != nil {
		return types.FeedbackRecord{}, err
	}
	text := strings.TrimSpace(req.Text)
	a := s.analyzer.Analyze(ctx, text)
	rec := types.NewFeedbackRecord(a,
		strings.TrimSpace(req.StakeholderType),
		strings.TrimSpace(req.Sector),
		strings.TrimSpace(req.PolicyID))
	saved, err := s.store.Insert(ctx, rec)
	if err != nil {
		return types.FeedbackRecord{}, fmt.Errorf("save feedback: %w", err)
	}
	logging.Info("feedback stored",
		"id", saved.ID,
		"sentiment", saved.Sentiment,
		"language", saved.Language,
		"spam", saved.IsSpam,
		"nuances", len(saved.Nuances))
	return saved, nil
}

// Pagination describes a page of List results.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of stored feedback, newest first.
type Page struct {
	Data       []types.FeedbackRecord `json:"data"`
	Pagination Pagination             `json:"pagination"`
}

// List returns a page of feedback. A zero limit uses the default page size.
func (s *Service) List(ctx context.Context, policyID string, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = feedbackrepo.DefaultLimit
	}
	f := feedbackrepo.Filter{PolicyID: strings.TrimSpace(policyID), Limit: limit, Offset: offset}.Normalize()
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("list feedback: %w", err)
	}
	total, err := s.store.Count(ctx, feedbackrepo.Filter{PolicyID: f.PolicyID})
	if err != nil {
		return Page{}, fmt.Errorf("count feedback: %w", err)
	}
	return Page{Data: rows, Pagination: paginate(total, f.Limit, f.Offset)}, nil
}

func paginate(total, limit, offset int) Pagination {
	page := offset/limit + 1
	pages := max(1, (total+limit-1)/limit)
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

// Get returns one stored record or feedbackrepo.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (types.FeedbackRecord, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

// Analytics aggregates every stored row, optionally for one policy.
func (s *Service) Analytics(ctx context.Context, policyID string) (types.Analytics, error) {
	rows, err := s.store.List(ctx, feedbackrepo.Filter{PolicyID: strings.TrimSpace(policyID)})
	if err != nil {
		return types.Analytics{}, fmt.Errorf("load feedback for analytics: %w", err)
	}
	return projection.BuildAnalytics(rows), nil
}
