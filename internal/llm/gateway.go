package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"policyinsight/internal/logging"
)

// Preference selects which provider a Gateway call tries first.
type Preference int

const (
	Auto Preference = iota
	Primary
	Secondary
)

func (p Preference) String() string {
	switch p {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "auto"
	}
}

// ParsePreference maps "primary"/"gemini" and "secondary"/"groq"/"anthropic"
// to a Preference. Anything else is Auto.
func ParsePreference(s string) Preference {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "gemini":
		return Primary
	case "secondary", "groq", "anthropic":
		return Secondary
	default:
		return Auto
	}
}

// Gateway exposes one generate call over two interchangeable providers
// with a single cross-provider fallback.
type Gateway struct {
	primary   LLMClient
	secondary LLMClient
	embedder  Embedder
	local     HashEmbedder
}

// NewGateway builds a gateway. Either client may be nil. A nil embedder
// selects the local hash embedder.
func NewGateway(primary, secondary LLMClient, embedder Embedder) *Gateway {
	return &Gateway{primary: primary, secondary: secondary, embedder: embedder}
}

// order returns the provider to try first and its fallback.
func (g *Gateway) order(pref Preference) (LLMClient, LLMClient) {
	switch pref {
	case Secondary:
		if g.secondary != nil {
			return g.secondary, g.primary
		}
		return g.primary, nil
	default:
		if g.primary != nil {
			return g.primary, g.secondary
		}
		return g.secondary, nil
	}
}

// Generate sends prompt to the preferred provider. On failure it tries the
// other configured provider exactly once. An empty answer counts as failure.
func (g *Gateway) Generate(ctx context.Context, prompt string, maxTokens int, pref Preference) (string, error) {
	first, second := g.order(pref)
	if first == nil {
		return "", fmt.Errorf("%w: none configured", ErrProviderUnavailable)
	}
	out, err := generateNonEmpty(ctx, first, prompt, maxTokens)
	if err == nil {
		return out, nil
	}
	if second == nil || ctx.Err() != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, first.Name(), err)
	}
	logging.Warn("provider failed, falling back", "phase", PhaseFrom(ctx), "from", first.Name(), "to", second.Name(), "err", err)
	out, err2 := generateNonEmpty(ctx, second, prompt, maxTokens)
	if err2 != nil {
		return "", fmt.Errorf("%w: %s: %v; %s: %v", ErrProviderUnavailable, first.Name(), err, second.Name(), err2)
	}
	return out, nil
}

func generateNonEmpty(ctx context.Context, c LLMClient, prompt string, maxTokens int) (string, error) {
	out, err := c.GenerateText(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Embed returns the remote embedding when an embedder is configured,
// otherwise the local hash embedding.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.embedder == nil {
		return g.local.Embed(ctx, text)
	}
	v, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return v, nil
}

// EmbedBatch embeds texts in order. A failed item is left nil so callers
// can fall back per item.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var errs []error
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		v, err := g.Embed(ctx, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		out[i] = v
	}
	return out, errors.Join(errs...)
}

// Providers lists the configured provider names, primary first.
func (g *Gateway) Providers() []string {
	var out []string
	for _, c := range []LLMClient{g.primary, g.secondary} {
		if c != nil {
			out = append(out, c.Name())
		}
	}
	return out
}

// EmbedderName reports which embedder backs Embed.
func (g *Gateway) EmbedderName() string {
	if g.embedder == nil {
		return "local-hash"
	}
	return embedderName(g.embedder)
}

// Name summarizes the gateway for status output.
func (g *Gateway) Name() string {
	p := g.Providers()
	if len(p) == 0 {
		return "gateway(none)"
	}
	return "gateway(" + strings.Join(p, ",") + ")"
}

// Close closes both providers.
func (g *Gateway) Close() error {
	var errs []error
	for _, c := range []LLMClient{g.primary, g.secondary} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
