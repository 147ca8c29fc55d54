// Package analysis turns one feedback text into a structured analysis.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/types"
	"policyinsight/internal/util/jsonutil"
)

// Generator is the text-generation side of the provider gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, pref llm.Preference) (string, error)
}

const (
	sentimentMaxTokens = 200
	defaultConfidence  = 0.5
	defaultReasoning   = "Could not determine sentiment"
)

// Analyzer combines local heuristics with provider sentiment and embeddings.
type Analyzer struct {
	gen   Generator
	embed llm.Embedder
}

func NewAnalyzer(gen Generator, embed llm.Embedder) *Analyzer {
	return &Analyzer{gen: gen, embed: embed}
}

// SentimentResult is the classifier's verdict for one text.
type SentimentResult struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// DefaultSentiment is used whenever the classifier fails or answers garbage.
func DefaultSentiment() SentimentResult {
	return SentimentResult{Label: string(types.SentimentNeutral), Score: defaultConfidence, Reasoning: defaultReasoning}
}

// Analyze never fails. Sentiment and embedding run concurrently and are
// joined before the record is assembled.
func (a *Analyzer) Analyze(ctx context.Context, text string) types.FeedbackAnalysis {
	lang := DetectLanguage(text)
	out := types.FeedbackAnalysis{
		Text:     text,
		Language: lang,
		IsSpam:   DetectSpam(text),
		Nuances:  DetectNuances(text, lang),
		Scores:   ComputeScores(text),
	}

	var (
		sent      SentimentResult
		embedding []float32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sent = a.ClassifySentiment(gctx, text)
		return nil
	})
	g.Go(func() error {
		if a.embed == nil {
			return nil
		}
		v, err := a.embed.Embed(gctx, text)
		if err != nil {
			logging.Debug("embedding skipped", "err", err)
			return nil
		}
		embedding = v
		return nil
	})
	_ = g.Wait()

	out.Sentiment = NormalizeSentiment(sent.Label)
	out.Confidence = clampUnit(sent.Score)
	out.Reasoning = sent.Reasoning
	out.Embedding = embedding
	return out
}

// ClassifySentiment asks the gateway for {label, score, reasoning}. Any
// failure yields DefaultSentiment.
func (a *Analyzer) ClassifySentiment(ctx context.Context, text string) SentimentResult {
	if a.gen == nil {
		return DefaultSentiment()
	}
	ctx = llm.WithPhase(ctx, llm.PhaseSentiment)
	resp, err := a.gen.Generate(ctx, sentimentPrompt(text), sentimentMaxTokens, llm.Auto)
	if err != nil {
		logging.Warn("sentiment classification failed", "err", err)
		return DefaultSentiment()
	}
	res, err := ParseSentiment(resp)
	if err != nil {
		logging.Warn("sentiment response unusable", "err", err)
		return DefaultSentiment()
	}
	return res
}

// ParseSentiment reads the first JSON object in resp. A missing label is
// treated as malformed.
func ParseSentiment(resp string) (SentimentResult, error) {
	var raw struct {
		Label     string   `json:"label"`
		Sentiment string   `json:"sentiment"`
		Score     *float64 `json:"score"`
		Reasoning string   `json:"reasoning"`
	}
	if err := jsonutil.DecodeObject(resp, &raw); err != nil {
		return SentimentResult{}, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	label := raw.Label
	if label == "" {
		label = raw.Sentiment
	}
	if strings.TrimSpace(label) == "" {
		return SentimentResult{}, fmt.Errorf("%w: missing label", llm.ErrMalformedResponse)
	}
	res := SentimentResult{Label: label, Score: defaultConfidence, Reasoning: raw.Reasoning}
	if raw.Score != nil {
		res.Score = clampUnit(*raw.Score)
	}
	return res, nil
}

func sentimentPrompt(text string) string {
	return fmt.Sprintf(`Analyze the sentiment of this text and respond with ONLY a JSON object:

Text: %q

Return format:
{
  "label": "Positive" or "Negative" or "Neutral",
  "score": 0.0 to 1.0,
  "reasoning": "brief explanation"
}`, text)
}

func clampUnit(v float64) float64 {
	switch {
	case v != v:
		return defaultConfidence
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
