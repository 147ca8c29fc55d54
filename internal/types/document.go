package types

import "time"

// DocumentType selects the generated document template.
type DocumentType string

const (
	DocumentBriefing       DocumentType = "briefing"
	DocumentResponse       DocumentType = "response"
	DocumentRiskAssessment DocumentType = "risk_assessment"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentBriefing, DocumentResponse, DocumentRiskAssessment:
		return true
	}
	return false
}

type DocumentSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type DocumentMetadata struct {
	TotalFeedbackAnalyzed   int       `json:"totalFeedbackAnalyzed"`
	DateGenerated           time.Time `json:"dateGenerated"`
	TopicRelevanceThreshold float64   `json:"topicRelevanceThreshold"`
}

// Document is an AI-drafted policy document grounded in feedback.
type Document struct {
	DocumentType DocumentType      `json:"documentType"`
	Title        string            `json:"title"`
	Sections     []DocumentSection `json:"sections"`
	Metadata     DocumentMetadata  `json:"metadata"`
}
