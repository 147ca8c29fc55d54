package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/types"
	"policyinsight/internal/util/jsonutil"
)

const (
	MinDocumentFeedback     = 5
	TopicRelevanceThreshold = 0.7

	documentSampleItems = 20
	documentMaxTokens   = 2000
)

// DocumentRequest describes a document to draft from feedback texts.
type DocumentRequest struct {
	DocumentType types.DocumentType
	Topic        string
	Texts        []string
}

type documentTemplate struct {
	titlePrefix string
	intro       string
	sections    []types.DocumentSection
}

var templates = map[types.DocumentType]documentTemplate{
	types.DocumentBriefing: {
		titlePrefix: "Ministerial Briefing",
		intro:       `Generate a comprehensive ministerial briefing document about %q based on public feedback.`,
		sections: []types.DocumentSection{
			{Title: "Executive Summary", Content: "2-3 paragraph overview"},
			{Title: "Key Public Concerns", Content: "Bullet points of main concerns"},
			{Title: "Sentiment Analysis", Content: "Overall public sentiment analysis"},
			{Title: "Recommendations", Content: "3-5 actionable recommendations"},
		},
	},
	types.DocumentResponse: {
		titlePrefix: "Public Response Document",
		intro:       `Generate a public response document addressing concerns about %q.`,
		sections: []types.DocumentSection{
			{Title: "Acknowledgment", Content: "Acknowledge public concerns"},
			{Title: "Our Position", Content: "Government's position on the matter"},
			{Title: "Addressing Key Concerns", Content: "Point-by-point response to main concerns"},
			{Title: "Next Steps", Content: "What happens next"},
		},
	},
	types.DocumentRiskAssessment: {
		titlePrefix: "Risk Assessment",
		intro:       `Generate a risk assessment document for %q based on public feedback.`,
		sections: []types.DocumentSection{
			{Title: "Risk Overview", Content: "Summary of identified risks"},
			{Title: "Critical Risks", Content: "High-priority risks requiring immediate attention"},
			{Title: "Moderate Risks", Content: "Medium-priority risks"},
			{Title: "Mitigation Strategies", Content: "Recommended mitigation approaches"},
		},
	},
}

// ValidateDocumentTarget checks the topic and type before any feedback is loaded.
func ValidateDocumentTarget(dt types.DocumentType, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return types.Invalid("topic", "topic is required")
	}
	if !dt.Valid() {
		return types.Invalid("documentType", "unknown document type %q", dt)
	}
	return nil
}

// ValidateDocumentRequest rejects a missing topic, an unknown type, or
// fewer than MinDocumentFeedback non-blank texts.
func ValidateDocumentRequest(req DocumentRequest) error {
	if err := ValidateDocumentTarget(req.DocumentType, req.Topic); err != nil {
		return err
	}
	if n := len(nonBlank(req.Texts)); n < MinDocumentFeedback {
		return types.Invalid("feedback", "insufficient feedback data: at least %d entries required, got %d", MinDocumentFeedback, n)
	}
	return nil
}

// GenerateDocument drafts a document. Only invalid input is an error; a
// provider failure yields a document assembled from the feedback sample.
func (w *Writer) GenerateDocument(ctx context.Context, req DocumentRequest) (types.Document, error) {
	if err := ValidateDocumentRequest(req); err != nil {
		return types.Document{}, err
	}
	texts := nonBlank(req.Texts)
	tpl := templates[req.DocumentType]
	title := fmt.Sprintf("%s: %s", tpl.titlePrefix, strings.TrimSpace(req.Topic))
	meta := types.DocumentMetadata{
		TotalFeedbackAnalyzed:   len(texts),
		DateGenerated:           time.Now().UTC(),
		TopicRelevanceThreshold: TopicRelevanceThreshold,
	}

	out, err := w.generate(ctx, llm.PhaseDocument, documentPrompt(tpl, req, title, meta), documentMaxTokens)
	if err != nil {
		logging.Warn("document generation failed, using feedback digest", "type", req.DocumentType, "err", err)
		return fallbackDocument(tpl, req.DocumentType, title, texts, meta), nil
	}
	doc, perr := parseDocument(out)
	if perr != nil {
		logging.Debug("document response not JSON, keeping raw text", "err", perr)
		return types.Document{
			DocumentType: req.DocumentType,
			Title:        title,
			Sections:     []types.DocumentSection{{Title: "Analysis", Content: strings.TrimSpace(out)}},
			Metadata:     meta,
		}, nil
	}
	doc.DocumentType = req.DocumentType
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = title
	}
	doc.Metadata = meta
	return doc, nil
}

func documentPrompt(tpl documentTemplate, req DocumentRequest, title string, meta types.DocumentMetadata) string {
	skeleton := types.Document{
		DocumentType: req.DocumentType,
		Title:        title,
		Sections:     tpl.sections,
		Metadata:     meta,
	}
	shape, _ := jsonutil.MarshalNoEscape(skeleton)
	sample := strings.Join(head(nonBlank(req.Texts), documentSampleItems), "\n- ")
	return fmt.Sprintf(tpl.intro, strings.TrimSpace(req.Topic)) + `

Public Feedback Sample:
- ` + sample + `

Return a JSON object with this exact structure:
` + string(shape)
}

func parseDocument(resp string) (types.Document, error) {
	var raw struct {
		Title    string                  `json:"title"`
		Sections []types.DocumentSection `json:"sections"`
	}
	if err := jsonutil.DecodeObject(resp, &raw); err != nil {
		return types.Document{}, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if len(raw.Sections) == 0 {
		return types.Document{}, fmt.Errorf("%w: no sections", llm.ErrMalformedResponse)
	}
	return types.Document{Title: raw.Title, Sections: raw.Sections}, nil
}

func fallbackDocument(tpl documentTemplate, dt types.DocumentType, title string, texts []string, meta types.DocumentMetadata) types.Document {
	sample := head(texts, documentSampleItems)
	var digest strings.Builder
	for _, t := range sample {
		digest.WriteString("- ")
		digest.WriteString(types.SummarizeText(t))
		digest.WriteString("\n")
	}
	sections := make([]types.DocumentSection, 0, len(tpl.sections))
	for i, s := range tpl.sections {
		content := "Automated drafting is unavailable. Review the feedback sample before completing this section."
		if i == 0 {
			content = fmt.Sprintf("Drafted from %d feedback entries without AI assistance.\n%s", len(texts), strings.TrimRight(digest.String(), "\n"))
		}
		sections = append(sections, types.DocumentSection{Title: s.Title, Content: content})
	}
	return types.Document{DocumentType: dt, Title: title, Sections: sections, Metadata: meta}
}

func nonBlank(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
