// Package cluster groups a batch of feedback texts into thematic clusters.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/types"
	"policyinsight/internal/util/jsonutil"
)

const (
	DefaultK              = 5
	DefaultMaxPromptItems = 20
	clusterMaxTokens      = 1000
)

// Generator is the text-generation side of the provider gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, pref llm.Preference) (string, error)
}

// Engine asks the provider for a partition and validates it.
type Engine struct {
	gen Generator
	// MaxPromptItems caps how many texts are quoted in the prompt.
	MaxPromptItems int
}

func NewEngine(gen Generator) *Engine {
	return &Engine{gen: gen, MaxPromptItems: DefaultMaxPromptItems}
}

// ClampK returns the effective cluster count for n items.
func ClampK(n, k int) int {
	if k < 1 {
		k = 1
	}
	if n < k {
		k = n
		if k < 1 {
			k = 1
		}
	}
	return k
}

// Cluster partitions texts into k clusters. The result always covers every
// index exactly once; an unusable provider answer is replaced by
// EvenPartition.
func (e *Engine) Cluster(ctx context.Context, texts []string, k int) []types.Cluster {
	n := len(texts)
	if n == 0 {
		return []types.Cluster{}
	}
	k = ClampK(n, k)
	if e.gen == nil {
		return EvenPartition(n, k)
	}

	ctx = llm.WithPhase(ctx, llm.PhaseCluster)
	resp, err := e.gen.Generate(ctx, e.prompt(texts, k), clusterMaxTokens, llm.Auto)
	if err != nil {
		logging.Warn("clustering provider failed, using even partition", "n", n, "k", k, "err", err)
		return EvenPartition(n, k)
	}
	clusters, err := Parse(resp)
	if err == nil {
		err = Validate(clusters, n)
	}
	if err != nil {
		logging.Warn("clustering response rejected, using even partition", "n", n, "k", k, "err", err)
		return EvenPartition(n, k)
	}
	return renumber(clusters)
}

func (e *Engine) prompt(texts []string, k int) string {
	limit := e.MaxPromptItems
	if limit <= 0 || limit > len(texts) {
		limit = len(texts)
	}
	sample, _ := jsonutil.MarshalNoEscape(texts[:limit])
	return fmt.Sprintf(`Group these %d feedback texts into %d thematic clusters.

Feedback: %s

Return ONLY this JSON format:
{
  "clusters": [
    {
      "id": 0,
      "name": "Theme Name",
      "description": "What this cluster represents",
      "feedback_indices": [0, 1, 2],
      "key_themes": ["theme1", "theme2"]
    }
  ]
}

Ensure all indices 0-%d are assigned to exactly one cluster.`, len(texts), k, sample, len(texts)-1)
}

type wireCluster struct {
	ID              json.RawMessage `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	FeedbackIndices []int           `json:"feedback_indices"`
	FeedbackCamel   []int           `json:"feedbackIndices"`
	KeyThemes       []string        `json:"key_themes"`
	KeyThemesCamel  []string        `json:"keyThemes"`
}

// Parse reads the first JSON object of resp as {"clusters":[...]}.
// Both snake_case and camelCase member names are accepted.
func Parse(resp string) ([]types.Cluster, error) {
	var wire struct {
		Clusters []wireCluster `json:"clusters"`
	}
	if err := jsonutil.DecodeObject(resp, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if len(wire.Clusters) == 0 {
		return nil, fmt.Errorf("%w: no clusters", llm.ErrMalformedResponse)
	}
	out := make([]types.Cluster, 0, len(wire.Clusters))
	for _, w := range wire.Clusters {
		idx := w.FeedbackIndices
		if idx == nil {
			idx = w.FeedbackCamel
		}
		themes := w.KeyThemes
		if themes == nil {
			themes = w.KeyThemesCamel
		}
		if themes == nil {
			themes = []string{}
		}
		out = append(out, types.Cluster{
			Name:            strings.TrimSpace(w.Name),
			Description:     strings.TrimSpace(w.Description),
			FeedbackIndices: append([]int{}, idx...),
			KeyThemes:       themes,
		})
	}
	return out, nil
}

// Validate checks that clusters cover 0..n-1 exactly once each.
func Validate(clusters []types.Cluster, n int) error {
	seen := make([]bool, n)
	count := 0
	for _, c := range clusters {
		for _, i := range c.FeedbackIndices {
			if i < 0 || i >= n {
				return fmt.Errorf("%w: index %d out of range [0,%d)", llm.ErrMalformedResponse, i, n)
			}
			if seen[i] {
				return fmt.Errorf("%w: index %d assigned twice", llm.ErrMalformedResponse, i)
			}
			seen[i] = true
			count++
		}
	}
	if count != n {
		return fmt.Errorf("%w: %d of %d items assigned", llm.ErrMalformedResponse, count, n)
	}
	return nil
}

// EvenPartition splits 0..n-1 into k contiguous runs of n/k items; the last
// run absorbs the remainder.
func EvenPartition(n, k int) []types.Cluster {
	if n <= 0 {
		return []types.Cluster{}
	}
	k = ClampK(n, k)
	size := n / k
	out := make([]types.Cluster, 0, k)
	for i := 0; i < k; i++ {
		start := i * size
		end := start + size
		if i == k-1 {
			end = n
		}
		idx := make([]int, 0, end-start)
		for j := start; j < end; j++ {
			idx = append(idx, j)
		}
		out = append(out, types.Cluster{
			ID:              i,
			Name:            fmt.Sprintf("Group %d", i+1),
			Description:     fmt.Sprintf("Feedback cluster %d", i+1),
			FeedbackIndices: idx,
			KeyThemes:       []string{"general"},
		})
	}
	return out
}

// renumber assigns ids 0..m-1 and fills blank names.
func renumber(clusters []types.Cluster) []types.Cluster {
	for i := range clusters {
		clusters[i].ID = i
		if clusters[i].Name == "" {
			clusters[i].Name = fmt.Sprintf("Cluster %d", i+1)
		}
	}
	return clusters
}

// Assignments maps each item index to its cluster id. Items not covered
// keep types.Unclustered.
func Assignments(clusters []types.Cluster, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = types.Unclustered
	}
	for _, c := range clusters {
		for _, i := range c.FeedbackIndices {
			if i >= 0 && i < n {
				out[i] = c.ID
			}
		}
	}
	return out
}
