package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FakeClient is a deterministic LLMClient for tests. Responses are
// looked up by phase (see WithPhase), then fall back to Default.
type FakeClient struct {
	ID        string
	Default   string
	ByPhase   map[string]string
	Err       error
	ErrPhases map[string]error

	mu      sync.Mutex
	calls   int
	prompts []string
}

// NewFakeClient returns a client that answers every prompt with resp.
func NewFakeClient(resp string) *FakeClient {
	return &FakeClient{ID: "fake", Default: resp}
}

// NewFailingClient returns a client whose every call fails with err.
func NewFailingClient(err error) *FakeClient {
	if err == nil {
		err = errors.New("fake: provider down")
	}
	return &FakeClient{ID: "failing", Err: err}
}

func (f *FakeClient) Name() string {
	if f.ID == "" {
		return "fake"
	}
	return f.ID
}
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(ctx context.Context, prompt string, _ int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	phase := PhaseFrom(ctx)
	if err, ok := f.ErrPhases[phase]; ok {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if resp, ok := f.ByPhase[phase]; ok {
		return resp, nil
	}
	return f.Default, nil
}

// Calls reports how many times GenerateText was invoked.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns a copy of the prompts received so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// FakeEmbedder returns a fixed vector or a fixed error. A positive Delay
// blocks each call until it elapses or ctx is done.
type FakeEmbedder struct {
	Vector []float32
	Err    error
	Delay  time.Duration
}

func (f *FakeEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]float32(nil), f.Vector...), nil
}
