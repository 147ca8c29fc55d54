package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/types"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	conf := 0.8
	first, err := s.Insert(ctx, types.FeedbackRecord{
		Text:                "Compliance cost is too high",
		Sentiment:           types.SentimentNegative,
		SentimentConfidence: &conf,
		Language:            types.LanguageEnglish,
		Nuances:             []string{types.NuancePoliteDisagreement},
		EdgeCaseFlags:       []string{types.NuancePoliteDisagreement},
		ComplianceScore:     40,
		StakeholderType:     "Business",
		PolicyID:            "p1",
		Embedding:           []float32{0.5, 0.25},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "Compliance cost is too high", first.Summary)

	_, err = s.Insert(ctx, types.FeedbackRecord{Text: "Great step forward", Sentiment: types.SentimentPositive, PolicyID: "p2"})
	require.NoError(t, err)
	third, err := s.Insert(ctx, types.FeedbackRecord{Text: "नीति अच्छी है", Sentiment: types.SentimentPositive, Language: types.LanguageHindi, PolicyID: "p1"})
	require.NoError(t, err)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Text, got.Text)
	require.NotNil(t, got.SentimentConfidence)
	assert.Equal(t, 0.8, *got.SentimentConfidence)
	assert.Equal(t, []string{types.NuancePoliteDisagreement}, got.EdgeCaseFlags)
	assert.Equal(t, 40, got.ComplianceScore)
	assert.Equal(t, "Business", got.StakeholderType)
	assert.Equal(t, []float32{0.5, 0.25}, got.Embedding)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "newest first")

	asc, err := s.List(ctx, Filter{Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, asc[0].ID)

	byPolicy, err := s.List(ctx, Filter{PolicyID: "p1"})
	require.NoError(t, err)
	assert.Len(t, byPolicy, 2)

	hindi, err := s.List(ctx, Filter{Language: types.LanguageHindi})
	require.NoError(t, err)
	require.Len(t, hindi, 1)
	assert.Equal(t, "नीति अच्छी है", hindi[0].Text)

	page, err := s.List(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)

	skip, err := s.List(ctx, Filter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, skip, 1)
	assert.Equal(t, first.ID, skip[0].ID)

	n, err := s.Count(ctx, Filter{Sentiment: types.SentimentPositive})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.now = stepClock()
	exerciseStore(t, s)
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Limit: 1000, Offset: -4}.Normalize()
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
}
