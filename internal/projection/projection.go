// Package projection turns analyzed feedback and cluster assignments into
// map and chart-ready structures.
package projection

import (
	"fmt"
	"math"
	"strings"

	"policyinsight/internal/analysis"
	"policyinsight/internal/cluster"
	"policyinsight/internal/types"
)

// Palette is cycled over clusters in order.
var Palette = []string{"#6366f1", "#10b981", "#f97316", "#ec4899", "#14b8a6", "#facc15"}

const maxConflictZones = 3

// Project maps an embedding to 2-D. Vectors with fewer than two dimensions
// get stable pseudo-random coordinates seeded by the item index.
func Project(embedding []float32, index int) (x, y float64) {
	if len(embedding) >= 2 {
		return float64(embedding[0]), float64(embedding[1])
	}
	return pseudoRandom(index)*2 - 1, pseudoRandom(index+42)*2 - 1
}

// pseudoRandom returns frac(sin(seed+1)*10000), always in [0,1).
func pseudoRandom(seed int) float64 {
	v := math.Sin(float64(seed)+1) * 10000
	return v - math.Floor(v)
}

// DominantSentiment returns the majority polarity. Ties resolve in the
// order Positive, Negative, Neutral; no votes yields Neutral.
func DominantSentiment(counts map[types.Sentiment]int) types.Sentiment {
	best, bestN := types.SentimentNeutral, 0
	for _, s := range types.Sentiments {
		if n := counts[s]; n > bestN {
			best, bestN = s, n
		}
	}
	return best
}

// ConflictZones pairs every negative cluster with every positive cluster,
// in order, keeping the first three pairs.
func ConflictZones(clusters []types.DebateCluster) []types.ConflictZone {
	var neg, pos []types.DebateCluster
	for _, c := range clusters {
		switch c.AverageSentiment {
		case types.SentimentNegative:
			neg = append(neg, c)
		case types.SentimentPositive:
			pos = append(pos, c)
		}
	}
	zones := []types.ConflictZone{}
	for _, n := range neg {
		for _, p := range pos {
			if len(zones) == maxConflictZones {
				return zones
			}
			zones = append(zones, types.ConflictZone{
				Cluster1:    n.Label,
				Cluster2:    p.Label,
				Description: fmt.Sprintf("Diverging viewpoints between %s and %s.", n.Label, p.Label),
			})
		}
	}
	return zones
}

// ConsensusAreas lists the labels of clusters whose dominant sentiment is Positive.
func ConsensusAreas(clusters []types.DebateCluster) []string {
	out := []string{}
	for _, c := range clusters {
		if c.AverageSentiment == types.SentimentPositive {
			out = append(out, c.Label)
		}
	}
	return out
}

// BuildDebateMap projects rows and summarizes clusters. embeddings is
// aligned with rows and may be shorter or hold nil entries. The narrative
// is left empty for the caller to fill.
func BuildDebateMap(rows []types.FeedbackRecord, embeddings [][]float32, clusters []types.Cluster) types.DebateMap {
	assign := cluster.Assignments(clusters, len(rows))
	points := make([]types.DebateMapPoint, len(rows))
	for i, r := range rows {
		var emb []float32
		if i < len(embeddings) {
			emb = embeddings[i]
		}
		x, y := Project(emb, i)
		var stakeholder *string
		if s := strings.TrimSpace(r.StakeholderType); s != "" {
			stakeholder = &s
		}
		points[i] = types.DebateMapPoint{
			ID:              r.ID,
			X:               x,
			Y:               y,
			ClusterID:       assign[i],
			Text:            r.Text,
			Sentiment:       analysis.NormalizeSentiment(string(r.Sentiment)),
			StakeholderType: stakeholder,
		}
	}

	dcs := make([]types.DebateCluster, 0, len(clusters))
	for i, c := range clusters {
		counts := map[types.Sentiment]int{}
		size := 0
		for _, idx := range c.FeedbackIndices {
			if idx < 0 || idx >= len(points) {
				continue
			}
			counts[points[idx].Sentiment]++
			size++
		}
		label := c.Name
		if strings.TrimSpace(label) == "" {
			label = fmt.Sprintf("Cluster %d", i+1)
		}
		themes := c.KeyThemes
		if themes == nil {
			themes = []string{}
		}
		dcs = append(dcs, types.DebateCluster{
			ID:               c.ID,
			Label:            label,
			Size:             size,
			AverageSentiment: DominantSentiment(counts),
			KeyThemes:        themes,
			Color:            Palette[i%len(Palette)],
		})
	}

	return types.DebateMap{
		Points:         points,
		Clusters:       dcs,
		ConflictZones:  ConflictZones(dcs),
		ConsensusAreas: ConsensusAreas(dcs),
	}
}

// NarrativeClusters is the cluster view handed to the narrative writer.
func NarrativeClusters(clusters []types.DebateCluster) []types.NarrativeCluster {
	out := make([]types.NarrativeCluster, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, types.NarrativeCluster{
			Name:        c.Label,
			Description: fmt.Sprintf("%d items with %s sentiment", c.Size, strings.ToLower(string(c.AverageSentiment))),
			Sentiment:   c.AverageSentiment,
		})
	}
	return out
}

// DebateClusterCount picks k for the debate map: a third of the rows,
// bounded to [2,5].
func DebateClusterCount(n int) int {
	k := n / 3
	if k == 0 {
		k = 2
	}
	return max(2, min(5, k))
}
