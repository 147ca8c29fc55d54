package types

import "time"

type PolicyStatus string

const (
	PolicyDraft     PolicyStatus = "draft"
	PolicyReview    PolicyStatus = "review"
	PolicyPublished PolicyStatus = "published"
	PolicyActive    PolicyStatus = "active"
	PolicyArchived  PolicyStatus = "archived"
)

// Policy is a draft regulation open for public feedback.
type Policy struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	FullText    string       `json:"fullText"`
	Version     string       `json:"version"`
	Status      PolicyStatus `json:"status"`
	Category    string       `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	// FeedbackCount is filled on reads; it is not a stored column.
	FeedbackCount int `json:"feedbackCount"`
}

// Valid reports whether s is a known status.
func (s PolicyStatus) Valid() bool {
	switch s {
	case PolicyDraft, PolicyReview, PolicyPublished, PolicyActive, PolicyArchived:
		return true
	}
	return false
}
