// Package narrative turns feedback batches and clusters into prose, with
// deterministic text whenever the provider is unavailable.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/types"
	"policyinsight/internal/util/jsonutil"
)

const (
	NoFeedbackMessage  = "No feedback to summarize."
	SummaryUnavailable = "Unable to generate summary at this time."
	NoClustersMessage  = "No clusters available to describe the debate landscape yet. Collect more feedback to generate insights."

	summaryItems     = 20
	wordCloudItems   = 50
	summaryMaxTokens = 300
	narrateMaxTokens = 400
	wordsMaxTokens   = 500
)

// Generator is the text-generation side of the provider gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, pref llm.Preference) (string, error)
}

// Writer wraps the gateway with fallback prose.
type Writer struct {
	gen Generator
}

func NewWriter(gen Generator) *Writer {
	return &Writer{gen: gen}
}

func (w *Writer) generate(ctx context.Context, phase, prompt string, maxTokens int) (string, error) {
	if w.gen == nil {
		return "", llm.ErrProviderUnavailable
	}
	return w.gen.Generate(llm.WithPhase(ctx, phase), prompt, maxTokens, llm.Auto)
}

// Summarize condenses up to the first 20 texts into a few paragraphs.
func (w *Writer) Summarize(ctx context.Context, texts []string) string {
	if len(texts) == 0 {
		return NoFeedbackMessage
	}
	prompt := fmt.Sprintf(`Summarize the key points from these feedback texts in 2-3 concise paragraphs:

%s

Summary:`, strings.Join(head(texts, summaryItems), "\n\n"))
	out, err := w.generate(ctx, llm.PhaseSummary, prompt, summaryMaxTokens)
	if err != nil {
		logging.Warn("summarization failed", "err", err)
		return SummaryUnavailable
	}
	return strings.TrimSpace(out)
}

// Narrate describes the debate landscape across clusters. An empty cluster
// list returns NoClustersMessage without calling the provider.
func (w *Writer) Narrate(ctx context.Context, clusters []types.NarrativeCluster, total int) string {
	if len(clusters) == 0 {
		return NoClustersMessage
	}
	payload, _ := jsonutil.MarshalNoEscape(clusters)
	prompt := fmt.Sprintf(`You are an AI policy analyst. Craft a narrative summary of the current debate landscape based on the following clusters.
Reference the overall tone, areas of agreement, and emerging tensions.
Output 2 concise paragraphs.

Total feedback: %d
Clusters: %s`, total, payload)
	out, err := w.generate(ctx, llm.PhaseNarrative, prompt, narrateMaxTokens)
	if err != nil {
		logging.Warn("narrative generation failed", "err", err)
		return FallbackNarrative(clusters, total)
	}
	return strings.TrimSpace(out)
}

// FallbackNarrative enumerates cluster names and sentiments.
func FallbackNarrative(clusters []types.NarrativeCluster, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis of %d feedback items across %d clusters.", total, len(clusters))
	var consensus []string
	for i, c := range clusters {
		sentiment := c.Sentiment
		if sentiment == "" {
			sentiment = types.SentimentNeutral
		}
		fmt.Fprintf(&sb, " %d. %s (%s sentiment)", i+1, c.Name, strings.ToLower(string(sentiment)))
		if c.Description != "" {
			fmt.Fprintf(&sb, ": %s", c.Description)
		}
		sb.WriteString(".")
		if sentiment == types.SentimentPositive {
			consensus = append(consensus, c.Name)
		}
	}
	if len(consensus) > 0 {
		fmt.Fprintf(&sb, " Consensus found in: %s.", strings.Join(consensus, ", "))
	} else {
		sb.WriteString(" Mixed opinions across stakeholders.")
	}
	return sb.String()
}

func head(texts []string, n int) []string {
	if len(texts) > n {
		return texts[:n]
	}
	return texts
}
