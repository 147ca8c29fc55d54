package llm

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, timeouts, logging).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit limits request rate with a token bucket.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimited{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, prompt, maxTokens)
}

// -------- Timeout --------

// Timeout bounds each call with d. A non-positive d disables it.
func Timeout(d time.Duration) Middleware {
	return func(next LLMClient) LLMClient {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next LLMClient
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Close() error { return t.next.Close() }
func (t *timed) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.GenerateText(ctx, prompt, maxTokens)
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. Provide a custom logger
// or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next LLMClient) LLMClient {
		return &logged{next: next, log: logger}
	}
}

type logged struct {
	next LLMClient
	log  *log.Logger
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }
func (l *logged) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	l.log.Printf("LLM request %s (%s): %d bytes", l.next.Name(), PhaseFrom(ctx), len(prompt))
	out, err := l.next.GenerateText(ctx, prompt, maxTokens)
	if err != nil {
		l.log.Printf("LLM error %s (%s): %v", l.next.Name(), PhaseFrom(ctx), err)
		return out, err
	}
	l.log.Printf("LLM response %s (%s): %d bytes in %s", l.next.Name(), PhaseFrom(ctx), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

// -------- Embedder --------

// EmbedMiddleware decorates an Embedder the way Middleware decorates an
// LLMClient.
type EmbedMiddleware func(Embedder) Embedder

// WrapEmbedder applies middlewares in left-to-right order, like Wrap.
func WrapEmbedder(inner Embedder, mws ...EmbedMiddleware) Embedder {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

func embedderName(e Embedder) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "remote"
}

// EmbedTimeout bounds each Embed call with d. A non-positive d disables it.
func EmbedTimeout(d time.Duration) EmbedMiddleware {
	return func(next Embedder) Embedder {
		if d <= 0 {
			return next
		}
		return &timedEmbedder{next: next, d: d}
	}
}

type timedEmbedder struct {
	next Embedder
	d    time.Duration
}

func (t *timedEmbedder) Name() string { return embedderName(t.next) }
func (t *timedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Embed(ctx, text)
}

// EmbedRateLimit limits Embed calls with a token bucket. If rps <= 0, the
// limiter is disabled.
func EmbedRateLimit(rps float64, burst int) EmbedMiddleware {
	return func(next Embedder) Embedder {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimitedEmbedder{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimitedEmbedder struct {
	next Embedder
	rl   *rate.Limiter
}

func (c *rateLimitedEmbedder) Name() string { return embedderName(c.next) }
func (c *rateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	return c.next.Embed(ctx, text)
}

// EmbedLogging logs embedding errors and latency.
func EmbedLogging(logger *log.Logger) EmbedMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Embedder) Embedder {
		return &loggedEmbedder{next: next, log: logger}
	}
}

type loggedEmbedder struct {
	next Embedder
	log  *log.Logger
}

func (l *loggedEmbedder) Name() string { return embedderName(l.next) }
func (l *loggedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := l.next.Embed(ctx, text)
	if err != nil {
		l.log.Printf("embed error %s: %v", embedderName(l.next), err)
		return nil, err
	}
	l.log.Printf("embed %s: %d bytes -> %d dims in %s", embedderName(l.next), len(text), len(v), time.Since(start).Round(time.Millisecond))
	return v, nil
}
