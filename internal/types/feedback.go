package types

import (
	"strings"
	"time"
)

// Sentiment is the coarse 3-way polarity of a feedback item.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Sentiments lists the polarities in tie-break order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Language is the heuristically detected language of a submission.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
)

// Nuance tags layered on top of sentiment.
const (
	NuanceSarcasm            = "Sarcasm"
	NuanceMixedSentiment     = "Mixed Sentiment"
	NuancePoliteDisagreement = "Polite Disagreement"
	NuanceShortAmbiguous     = "Short/Ambiguous"
)

// Scores are rule-based keyword scores, each in [0,100].
type Scores struct {
	LegalRisk            int `json:"legalRisk"`
	ComplianceDifficulty int `json:"complianceDifficulty"`
	BusinessGrowth       int `json:"businessGrowth"`
}

// FeedbackAnalysis is the output of analyzing one submission.
type FeedbackAnalysis struct {
	Text       string    `json:"text"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Language   Language  `json:"language"`
	IsSpam     bool      `json:"isSpam"`
	Nuances    []string  `json:"nuances"`
	Scores     Scores    `json:"scores"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// HasNuance reports whether tag is among the detected nuances.
func (a FeedbackAnalysis) HasNuance(tag string) bool {
	for _, n := range a.Nuances {
		if n == tag {
			return true
		}
	}
	return false
}

// FeedbackRecord is a persisted feedback row.
type FeedbackRecord struct {
	ID                  string    `json:"id"`
	Text                string    `json:"text"`
	Sentiment           Sentiment `json:"sentiment"`
	SentimentConfidence *float64  `json:"sentimentConfidence,omitempty"`
	Reasoning           string    `json:"reasoning,omitempty"`
	Language            Language  `json:"language"`
	Nuances             []string  `json:"nuances"`
	IsSpam              bool      `json:"isSpam"`
	LegalRiskScore      int       `json:"legalRiskScore"`
	ComplianceScore     int       `json:"complianceDifficultyScore"`
	BusinessGrowthScore int       `json:"businessGrowthScore"`
	StakeholderType     string    `json:"stakeholderType,omitempty"`
	Sector              string    `json:"sector,omitempty"`
	Summary             string    `json:"summary,omitempty"`
	EdgeCaseFlags       []string  `json:"edgeCaseFlags"`
	Embedding           []float32 `json:"-"`
	PolicyID            string    `json:"policyId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// SummaryMaxLen bounds the stored preview of a submission.
const SummaryMaxLen = 160

// SummarizeText returns text cut to SummaryMaxLen runes with a trailing ellipsis.
func SummarizeText(text string) string {
	r := []rune(text)
	if len(r) <= SummaryMaxLen {
		return text
	}
	return string(r[:SummaryMaxLen-3]) + "..."
}

// NewFeedbackRecord builds the row persisted for an analyzed submission.
func NewFeedbackRecord(a FeedbackAnalysis, stakeholderType, sector, policyID string) FeedbackRecord {
	conf := a.Confidence
	text := strings.TrimSpace(a.Text)
	return FeedbackRecord{
		Text:                text,
		Sentiment:           a.Sentiment,
		SentimentConfidence: &conf,
		Reasoning:           a.Reasoning,
		Language:            a.Language,
		Nuances:             append([]string{}, a.Nuances...),
		IsSpam:              a.IsSpam,
		LegalRiskScore:      a.Scores.LegalRisk,
		ComplianceScore:     a.Scores.ComplianceDifficulty,
		BusinessGrowthScore: a.Scores.BusinessGrowth,
		StakeholderType:     strings.TrimSpace(stakeholderType),
		Sector:              strings.TrimSpace(sector),
		Summary:             SummarizeText(a.Text),
		EdgeCaseFlags:       append([]string{}, a.Nuances...),
		Embedding:           a.Embedding,
		PolicyID:            strings.TrimSpace(policyID),
	}
}
