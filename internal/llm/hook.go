package llm

import "context"

type ctxKeyPhase struct{}

// Pipeline phases used to tag provider calls in logs.
const (
	PhaseSentiment = "sentiment"
	PhaseCluster   = "cluster"
	PhaseSummary   = "summary"
	PhaseNarrative = "narrative"
	PhaseWordCloud = "wordcloud"
	PhaseDocument  = "document"
)

// WithPhase tags ctx with the pipeline phase issuing the call.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
