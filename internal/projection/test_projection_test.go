package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/types"
)

func TestProject_UsesFirstTwoComponents(t *testing.T) {
	x, y := Project([]float32{0.25, -0.5, 9}, 3)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, -0.5, y)
}

func TestProject_FallbackIsStableAndBounded(t *testing.T) {
	for i := 0; i < 200; i++ {
		x1, y1 := Project(nil, i)
		x2, y2 := Project([]float32{1}, i)
		assert.Equal(t, x1, x2)
		assert.Equal(t, y1, y2)
		assert.True(t, x1 >= -1 && x1 < 1)
		assert.True(t, y1 >= -1 && y1 < 1)
	}
	want := math.Sin(1) * 10000
	want = (want-math.Floor(want))*2 - 1
	x, _ := Project(nil, 0)
	assert.InDelta(t, want, x, 1e-12)
}

func TestDominantSentiment(t *testing.T) {
	assert.Equal(t, types.SentimentNegative, DominantSentiment(map[types.Sentiment]int{types.SentimentNegative: 3, types.SentimentPositive: 1}))
	assert.Equal(t, types.SentimentPositive, DominantSentiment(map[types.Sentiment]int{types.SentimentNegative: 2, types.SentimentPositive: 2}))
	assert.Equal(t, types.SentimentNegative, DominantSentiment(map[types.Sentiment]int{types.SentimentNegative: 2, types.SentimentNeutral: 2}))
	assert.Equal(t, types.SentimentNeutral, DominantSentiment(nil))
}

func dc(label string, s types.Sentiment) types.DebateCluster {
	return types.DebateCluster{Label: label, AverageSentiment: s}
}

func TestConflictZones_CappedAtThree(t *testing.T) {
	zones := ConflictZones([]types.DebateCluster{
		dc("N1", types.SentimentNegative),
		dc("P1", types.SentimentPositive),
		dc("X", types.SentimentNeutral),
		dc("N2", types.SentimentNegative),
		dc("P2", types.SentimentPositive),
	})
	require.Len(t, zones, 3)
	assert.Equal(t, types.ConflictZone{Cluster1: "N1", Cluster2: "P1", Description: "Diverging viewpoints between N1 and P1."}, zones[0])
	assert.Equal(t, "N1", zones[1].Cluster1)
	assert.Equal(t, "P2", zones[1].Cluster2)
	assert.Equal(t, "N2", zones[2].Cluster1)
	assert.Equal(t, "P1", zones[2].Cluster2)
}

func TestConflictZones_NoneWithoutBothSides(t *testing.T) {
	assert.Empty(t, ConflictZones([]types.DebateCluster{dc("P", types.SentimentPositive)}))
}

func TestConsensusAreas(t *testing.T) {
	got := ConsensusAreas([]types.DebateCluster{dc("A", types.SentimentPositive), dc("B", types.SentimentNegative), dc("C", types.SentimentPositive)})
	assert.Equal(t, []string{"A", "C"}, got)
}

func TestBuildDebateMap(t *testing.T) {
	rows := []types.FeedbackRecord{
		{ID: "a", Text: "love it", Sentiment: types.SentimentPositive, StakeholderType: "Citizen"},
		{ID: "b", Text: "hate it", Sentiment: types.SentimentNegative},
		{ID: "c", Text: "great", Sentiment: "positive"},
		{ID: "d", Text: "awful", Sentiment: types.SentimentNegative},
	}
	clusters := []types.Cluster{
		{ID: 0, Name: "Fans", FeedbackIndices: []int{0, 2}, KeyThemes: []string{"support"}},
		{ID: 1, Name: "Critics", FeedbackIndices: []int{1, 3}},
	}
	embeddings := [][]float32{{0.1, 0.2}, nil}

	m := BuildDebateMap(rows, embeddings, clusters)
	require.Len(t, m.Points, 4)
	assert.InDelta(t, 0.1, m.Points[0].X, 1e-6)
	assert.Equal(t, 0, m.Points[0].ClusterID)
	assert.Equal(t, 1, m.Points[1].ClusterID)
	require.NotNil(t, m.Points[0].StakeholderType)
	assert.Equal(t, "Citizen", *m.Points[0].StakeholderType)
	assert.Nil(t, m.Points[1].StakeholderType)
	assert.Equal(t, types.SentimentPositive, m.Points[2].Sentiment)

	require.Len(t, m.Clusters, 2)
	assert.Equal(t, types.DebateCluster{ID: 0, Label: "Fans", Size: 2, AverageSentiment: types.SentimentPositive, KeyThemes: []string{"support"}, Color: "#6366f1"}, m.Clusters[0])
	assert.Equal(t, "#10b981", m.Clusters[1].Color)
	assert.Equal(t, []string{}, m.Clusters[1].KeyThemes)
	assert.Equal(t, []string{"Fans"}, m.ConsensusAreas)
	require.Len(t, m.ConflictZones, 1)
	assert.Equal(t, "Critics", m.ConflictZones[0].Cluster1)
}

func TestBuildDebateMap_Unclustered(t *testing.T) {
	rows := []types.FeedbackRecord{{ID: "a"}, {ID: "b"}}
	m := BuildDebateMap(rows, nil, []types.Cluster{{ID: 0, Name: "Only", FeedbackIndices: []int{0}}})
	assert.Equal(t, types.Unclustered, m.Points[1].ClusterID)
	assert.Equal(t, types.SentimentNeutral, m.Points[1].Sentiment)
}

func TestNarrativeClusters(t *testing.T) {
	nc := NarrativeClusters([]types.DebateCluster{{Label: "Fans", Size: 2, AverageSentiment: types.SentimentPositive}})
	require.Len(t, nc, 1)
	assert.Equal(t, "2 items with positive sentiment", nc[0].Description)
}

func TestDebateClusterCount(t *testing.T) {
	assert.Equal(t, 2, DebateClusterCount(1))
	assert.Equal(t, 2, DebateClusterCount(6))
	assert.Equal(t, 3, DebateClusterCount(9))
	assert.Equal(t, 5, DebateClusterCount(100))
}
