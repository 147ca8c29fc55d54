package app

import (
	"context"
	"strings"

	"policyinsight/internal/api/config"
	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
)

// NewGateway builds the provider gateway from config. Missing keys leave a
// slot empty; a gateway with no providers still answers with fallbacks.
func NewGateway(ctx context.Context, cfg config.LLMConfig) *llm.Gateway {
	mws := []llm.Middleware{
		llm.WithLogging(logging.Std("llm")),
		llm.Timeout(cfg.Timeout),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	}

	var (
		primary  llm.LLMClient
		embedder llm.Embedder
	)
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := llm.NewGeminiClient(ctx, key, cfg.GeminiModel, cfg.GeminiEmbeddingModel)
		if err != nil {
			logging.Warn("gemini disabled", "err", err)
		} else {
			primary = llm.Wrap(gemini, mws...)
			embedder = llm.WrapEmbedder(gemini,
				llm.EmbedLogging(logging.Std("embed")),
				llm.EmbedTimeout(cfg.Timeout),
				llm.EmbedRateLimit(cfg.RPS, cfg.Burst),
			)
		}
	}

	secondary := newSecondary(cfg)
	if secondary != nil {
		secondary = llm.Wrap(secondary, mws...)
	}

	gw := llm.NewGateway(primary, secondary, embedder)
	logging.Info("llm gateway ready", "providers", gw.Providers(), "embedder", gw.EmbedderName())
	return gw
}

// newSecondary prefers the configured secondary and falls back to the
// other one when its key is missing.
func newSecondary(cfg config.LLMConfig) llm.LLMClient {
	order := []string{"groq", "anthropic"}
	if cfg.SecondaryProvider == "anthropic" {
		order = []string{"anthropic", "groq"}
	}
	for _, name := range order {
		var (
			c   llm.LLMClient
			err error
		)
		switch name {
		case "groq":
			if strings.TrimSpace(cfg.GroqAPIKey) == "" {
				continue
			}
			c, err = llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
		case "anthropic":
			if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
				continue
			}
			c, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		}
		if err != nil {
			logging.Warn("secondary provider disabled", "provider", name, "err", err)
			continue
		}
		return c
	}
	return nil
}
