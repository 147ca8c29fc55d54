package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/llm"
	"policyinsight/internal/narrative"
	"policyinsight/internal/types"
)

func withFake(t *testing.T, fake *llm.FakeClient) {
	t.Helper()
	prev := newGateway
	newGateway = func(context.Context) (*llm.Gateway, error) {
		return llm.NewGateway(fake, nil, nil), nil
	}
	t.Cleanup(func() { newGateway = prev })
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	withFake(t, llm.NewFakeClient(`{"label":"Negative","score":0.7,"reasoning":"cost"}`))
	out, err := run(t, "", "analyze", "The", "compliance", "cost", "is", "too", "high")
	require.NoError(t, err)

	var a types.FeedbackAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, types.SentimentNegative, a.Sentiment)
	assert.Equal(t, "The compliance cost is too high", a.Text)
	assert.Equal(t, 20, a.Scores.ComplianceDifficulty)
	assert.Empty(t, a.Embedding)
}

func TestClusterFromFile(t *testing.T) {
	withFake(t, llm.NewFailingClient(nil))
	path := filepath.Join(t.TempDir(), "feedback.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\n\ntwo\nthree\nfour\n"), 0o644))

	out, err := run(t, "", "cluster", "--k", "2", "--narrate", path)
	require.NoError(t, err)
	var res clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Clusters, 2)
	assert.Equal(t, []int{0, 1}, res.Clusters[0].FeedbackIndices)
	assert.Equal(t, []int{2, 3}, res.Clusters[1].FeedbackIndices)
	assert.Contains(t, res.Narrative, "Analysis of 4 feedback items across 2 clusters.")
}

func TestSummarizeFromStdin(t *testing.T) {
	withFake(t, llm.NewFakeClient("Citizens want clearer rules."))
	out, err := run(t, "rules are vague\nneed guidance\n", "summarize", "-")
	require.NoError(t, err)
	assert.Equal(t, "Citizens want clearer rules.\n", out)

	out, err = run(t, "\n\n", "summarize", "-")
	require.NoError(t, err)
	assert.Equal(t, narrative.NoFeedbackMessage+"\n", out)
}

func TestClusterMissingFile(t *testing.T) {
	withFake(t, llm.NewFakeClient("x"))
	_, err := run(t, "", "cluster", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
