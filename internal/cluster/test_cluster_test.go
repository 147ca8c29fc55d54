package cluster

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/llm"
	"policyinsight/internal/types"
)

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("feedback item %d", i)
	}
	return out
}

func assertPartition(t *testing.T, clusters []types.Cluster, n int) {
	t.Helper()
	require.NoError(t, Validate(clusters, n))
}

func TestClampK(t *testing.T) {
	assert.Equal(t, 1, ClampK(10, 0))
	assert.Equal(t, 1, ClampK(10, -3))
	assert.Equal(t, 7, ClampK(7, 10))
	assert.Equal(t, 1, ClampK(0, 5))
	assert.Equal(t, 5, ClampK(12, 5))
}

func TestEvenPartition(t *testing.T) {
	cs := EvenPartition(10, 3)
	require.Len(t, cs, 3)
	assert.Equal(t, []int{0, 1, 2}, cs[0].FeedbackIndices)
	assert.Equal(t, []int{3, 4, 5}, cs[1].FeedbackIndices)
	assert.Equal(t, []int{6, 7, 8, 9}, cs[2].FeedbackIndices)
	assert.Equal(t, "Group 1", cs[0].Name)
	assert.Equal(t, "Feedback cluster 3", cs[2].Description)
	assert.Equal(t, []string{"general"}, cs[1].KeyThemes)
	assertPartition(t, cs, 10)
}

func TestEvenPartition_Coverage(t *testing.T) {
	for n := 1; n <= 25; n++ {
		for k := -1; k <= 12; k++ {
			assertPartition(t, EvenPartition(n, k), n)
		}
	}
	assert.Empty(t, EvenPartition(0, 3))
}

func TestCluster_SevenItemsTenClusters(t *testing.T) {
	e := NewEngine(llm.NewGateway(llm.NewFailingClient(nil), nil, nil))
	cs := e.Cluster(context.Background(), texts(7), 10)
	require.Len(t, cs, 7)
	for i, c := range cs {
		assert.Equal(t, []int{i}, c.FeedbackIndices)
	}
}

func TestCluster_EmptyInputNoCall(t *testing.T) {
	fake := llm.NewFakeClient("{}")
	e := NewEngine(llm.NewGateway(fake, nil, nil))
	assert.Empty(t, e.Cluster(context.Background(), nil, 3))
	assert.Equal(t, 0, fake.Calls())
}

func TestCluster_AcceptsValidAIPartition(t *testing.T) {
	resp := "Here you go:\n" + `{"clusters":[
	  {"id":7,"name":"Costs","description":"cost worries","feedback_indices":[0,2],"key_themes":["cost"]},
	  {"id":9,"name":"","description":"growth","feedbackIndices":[1,3],"keyThemes":["growth","jobs"]}
	]}`
	e := NewEngine(llm.NewGateway(llm.NewFakeClient(resp), nil, nil))
	cs := e.Cluster(context.Background(), texts(4), 2)
	require.Len(t, cs, 2)
	assert.Equal(t, 0, cs[0].ID)
	assert.Equal(t, "Costs", cs[0].Name)
	assert.Equal(t, 1, cs[1].ID)
	assert.Equal(t, "Cluster 2", cs[1].Name)
	assert.Equal(t, []int{1, 3}, cs[1].FeedbackIndices)
	assert.Equal(t, []string{"growth", "jobs"}, cs[1].KeyThemes)
	assertPartition(t, cs, 4)
}

func TestCluster_RejectsDuplicates(t *testing.T) {
	resp := `{"clusters":[{"name":"A","feedback_indices":[0,1]},{"name":"B","feedback_indices":[1,2,3]}]}`
	e := NewEngine(llm.NewGateway(llm.NewFakeClient(resp), nil, nil))
	cs := e.Cluster(context.Background(), texts(4), 2)
	assert.Equal(t, "Group 1", cs[0].Name)
	assertPartition(t, cs, 4)
}

func TestCluster_RejectsGapsAndOutOfRange(t *testing.T) {
	for _, resp := range []string{
		`{"clusters":[{"name":"A","feedback_indices":[0,1]}]}`,
		`{"clusters":[{"name":"A","feedback_indices":[0,1,2,3,4]}]}`,
		`{"clusters":[{"name":"A","feedback_indices":[0,1,2,-1]}]}`,
		`not json at all`,
		`{"clusters":[]}`,
	} {
		e := NewEngine(llm.NewGateway(llm.NewFakeClient(resp), nil, nil))
		cs := e.Cluster(context.Background(), texts(4), 2)
		require.Len(t, cs, 2, resp)
		assert.Equal(t, "Group 2", cs[1].Name, resp)
		assertPartition(t, cs, 4)
	}
}

func TestCluster_PromptTruncation(t *testing.T) {
	fake := llm.NewFakeClient("")
	e := NewEngine(llm.NewGateway(fake, nil, nil))
	e.Cluster(context.Background(), texts(30), 3)
	require.Equal(t, 1, fake.Calls())
	p := fake.Prompts()[0]
	assert.Contains(t, p, "feedback item 19")
	assert.NotContains(t, p, "feedback item 20")
	assert.Contains(t, p, "Group these 30 feedback texts into 3 thematic clusters.")
	assert.Contains(t, p, "indices 0-29")
}

func TestAssignments(t *testing.T) {
	cs := []types.Cluster{{ID: 0, FeedbackIndices: []int{0, 2}}, {ID: 1, FeedbackIndices: []int{1}}}
	assert.Equal(t, []int{0, 1, 0, types.Unclustered}, Assignments(cs, 4))
}
