package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/llm"
	"policyinsight/internal/types"
)

func writerWith(c llm.LLMClient) *Writer {
	return NewWriter(llm.NewGateway(c, nil, nil))
}

func TestSummarize_EmptyNoCall(t *testing.T) {
	fake := llm.NewFakeClient("summary")
	w := writerWith(fake)
	assert.Equal(t, NoFeedbackMessage, w.Summarize(context.Background(), nil))
	assert.Equal(t, 0, fake.Calls())
}

func TestSummarize_ProviderText(t *testing.T) {
	fake := llm.NewFakeClient("  People worry about costs.  ")
	w := writerWith(fake)
	assert.Equal(t, "People worry about costs.", w.Summarize(context.Background(), []string{"too costly"}))
}

func TestSummarize_FirstTwentyOnly(t *testing.T) {
	fake := llm.NewFakeClient("ok")
	w := writerWith(fake)
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "t" + string(rune('a'+i))
	}
	w.Summarize(context.Background(), texts)
	p := fake.Prompts()[0]
	assert.Contains(t, p, "tt")
	assert.NotContains(t, p, "tu")
}

func TestSummarize_Failure(t *testing.T) {
	w := writerWith(llm.NewFailingClient(nil))
	assert.Equal(t, SummaryUnavailable, w.Summarize(context.Background(), []string{"x"}))
}

func TestNarrate_EmptyIsIdempotentAndFree(t *testing.T) {
	fake := llm.NewFakeClient("story")
	w := writerWith(fake)
	a := w.Narrate(context.Background(), nil, 10)
	b := w.Narrate(context.Background(), []types.NarrativeCluster{}, 10)
	assert.Equal(t, NoClustersMessage, a)
	assert.Equal(t, a, b)
	assert.Equal(t, 0, fake.Calls())
}

func TestNarrate_FallbackEnumerates(t *testing.T) {
	w := writerWith(llm.NewFailingClient(nil))
	out := w.Narrate(context.Background(), []types.NarrativeCluster{
		{Name: "Costs", Sentiment: types.SentimentNegative},
		{Name: "Growth", Description: "3 items", Sentiment: types.SentimentPositive},
	}, 9)
	assert.Contains(t, out, "Analysis of 9 feedback items across 2 clusters.")
	assert.Contains(t, out, "1. Costs (negative sentiment).")
	assert.Contains(t, out, "2. Growth (positive sentiment): 3 items.")
	assert.Contains(t, out, "Consensus found in: Growth.")
}

func TestNarrate_UsesProvider(t *testing.T) {
	fake := &llm.FakeClient{ByPhase: map[string]string{llm.PhaseNarrative: "A divided landscape."}}
	w := writerWith(fake)
	out := w.Narrate(context.Background(), []types.NarrativeCluster{{Name: "A"}}, 1)
	assert.Equal(t, "A divided landscape.", out)
	require.Len(t, fake.Prompts(), 1)
	assert.Contains(t, fake.Prompts()[0], `"name":"A"`)
}

func TestWordCloud_AIAnswer(t *testing.T) {
	w := writerWith(llm.NewFakeClient(`Here: {"tax": 12, "compliance": 7.6, "noise": 0}`))
	got := w.WordCloud(context.Background(), []string{"tax compliance"})
	assert.Equal(t, map[string]int{"tax": 12, "compliance": 8}, got)
}

func TestWordCloud_LocalFallback(t *testing.T) {
	w := writerWith(llm.NewFailingClient(nil))
	got := w.WordCloud(context.Background(), []string{
		"The compliance burden is heavy",
		"Compliance costs with the rules",
	})
	assert.Equal(t, 2, got["compliance"])
	assert.Equal(t, 1, got["burden"])
	assert.NotContains(t, got, "the")
	assert.NotContains(t, got, "with")
	assert.NotContains(t, got, "is")
}

func TestWordCloud_Empty(t *testing.T) {
	fake := llm.NewFakeClient("{}")
	assert.Empty(t, writerWith(fake).WordCloud(context.Background(), nil))
	assert.Equal(t, 0, fake.Calls())
}
