package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/cluster"
	"policyinsight/internal/llm"
	"policyinsight/internal/narrative"
	feedbackrepo "policyinsight/internal/repository/feedback"
	"policyinsight/internal/repository/report"
	"policyinsight/internal/types"
)

type fixture struct {
	svc     *Service
	fake    *llm.FakeClient
	store   *feedbackrepo.MemoryStore
	reports *report.MemoryStore
}

func newFixture(t *testing.T, fake *llm.FakeClient) fixture {
	t.Helper()
	gw := llm.NewGateway(fake, nil, nil)
	store := feedbackrepo.NewMemoryStore()
	reports := report.NewMemoryStore()
	svc := New(store, cluster.NewEngine(gw), narrative.NewWriter(gw), gw, reports)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, fake: fake, store: store, reports: reports}
}

func (f fixture) seed(t *testing.T, rows ...types.FeedbackRecord) {
	t.Helper()
	for _, r := range rows {
		_, err := f.store.Insert(context.Background(), r)
		require.NoError(t, err)
	}
}

func TestCluster_EmptyCorpusSkipsProvider(t *testing.T) {
	f := newFixture(t, llm.NewFakeClient("unused"))
	res, err := f.svc.Cluster(context.Background(), ClusterRequest{NumClusters: 3})
	require.NoError(t, err)
	assert.Equal(t, NoClusterFeedbackMessage, res.Narrative)
	assert.Empty(t, res.Clusters)
	assert.Zero(t, res.NumClusters)
	assert.Zero(t, f.fake.Calls())
}

func TestCluster_GroupsRowsByName(t *testing.T) {
	fake := &llm.FakeClient{ByPhase: map[string]string{
		llm.PhaseCluster: `{"clusters":[
			{"id":7,"name":"Costs","description":"cost worries","feedbackIndices":[0,2],"keyThemes":["cost"]},
			{"id":9,"name":"Support","description":"approval","feedback_indices":[1],"key_themes":["support"]}]}`,
		llm.PhaseNarrative: "Two camps are forming.",
	}}
	f := newFixture(t, fake)
	f.seed(t,
		types.FeedbackRecord{Text: "compliance cost is high", PolicyID: "p1"},
		types.FeedbackRecord{Text: "fully support this", PolicyID: "p1"},
		types.FeedbackRecord{Text: "another cost burden", PolicyID: "p1"},
		types.FeedbackRecord{Text: "other policy", PolicyID: "p2"},
	)

	res, err := f.svc.Cluster(context.Background(), ClusterRequest{NumClusters: 2, PolicyID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumClusters)
	assert.Equal(t, "Two camps are forming.", res.Narrative)
	assert.Nil(t, res.SilhouetteScore)
	require.Len(t, res.Clusters["Costs"], 2)
	require.Len(t, res.Clusters["Support"], 1)
	assert.Equal(t, 0, res.Groups[0].ID)
	assert.Equal(t, 1, res.Groups[1].ID)
}

func TestCluster_ProviderDownFallsBack(t *testing.T) {
	f := newFixture(t, llm.NewFailingClient(errors.New("down")))
	f.seed(t,
		types.FeedbackRecord{Text: "one two three four five"},
		types.FeedbackRecord{Text: "six seven eight nine ten"},
		types.FeedbackRecord{Text: "eleven twelve thirteen"},
	)
	res, err := f.svc.Cluster(context.Background(), ClusterRequest{NumClusters: 2})
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Len(t, res.Clusters["Group 1"], 1)
	assert.Len(t, res.Clusters["Group 2"], 2)
	assert.Contains(t, res.Narrative, "Analysis of 3 feedback items across 2 clusters.")
}

func TestCluster_FallbackNarrativeUsesMemberSentiment(t *testing.T) {
	fake := &llm.FakeClient{
		ByPhase: map[string]string{
			llm.PhaseCluster: `{"clusters":[{"id":0,"name":"Backers","description":"broad support","feedback_indices":[0,1,2],"key_themes":["support"]}]}`,
		},
		ErrPhases: map[string]error{llm.PhaseNarrative: errors.New("down")},
	}
	f := newFixture(t, fake)
	f.seed(t,
		types.FeedbackRecord{Text: "great reform", Sentiment: types.SentimentPositive},
		types.FeedbackRecord{Text: "really helpful", Sentiment: types.SentimentPositive},
		types.FeedbackRecord{Text: "too costly", Sentiment: types.SentimentNegative},
	)

	res, err := f.svc.Cluster(context.Background(), ClusterRequest{NumClusters: 1})
	require.NoError(t, err)
	assert.Contains(t, res.Narrative, "Backers (positive sentiment)")
	assert.Contains(t, res.Narrative, "Consensus found in: Backers.")
}

func TestSummary(t *testing.T) {
	f := newFixture(t, &llm.FakeClient{ByPhase: map[string]string{llm.PhaseSummary: "  People want clarity.  "}})
	res, err := f.svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, NoSummaryFeedbackMessage, res.Summary)
	assert.Zero(t, res.FeedbackCount)

	f.seed(t, types.FeedbackRecord{Text: "please clarify the scope"}, types.FeedbackRecord{Text: "timeline unclear"})
	res, err = f.svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "People want clarity.", res.Summary)
	assert.Equal(t, 2, res.FeedbackCount)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), res.GeneratedAt)
}

func TestWordCloud_LanguageFilter(t *testing.T) {
	f := newFixture(t, llm.NewFailingClient(nil))
	f.seed(t,
		types.FeedbackRecord{Text: "taxes taxes everywhere", Language: types.LanguageEnglish},
		types.FeedbackRecord{Text: "कर बहुत ज्यादा है", Language: types.LanguageHindi},
	)
	res, err := f.svc.WordCloud(context.Background(), "", "english")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalFeedback)
	assert.Equal(t, 2, res.Words["taxes"])

	res, err = f.svc.WordCloud(context.Background(), "", "tamil")
	require.NoError(t, err)
	assert.Zero(t, res.TotalFeedback)
	assert.Empty(t, res.Words)
}

func TestDebateMap(t *testing.T) {
	fake := &llm.FakeClient{ByPhase: map[string]string{
		llm.PhaseCluster: `{"clusters":[
			{"name":"Critics","description":"","feedback_indices":[0,1],"key_themes":["cost"]},
			{"name":"Backers","description":"","feedback_indices":[2,3],"key_themes":["growth"]}]}`,
		llm.PhaseNarrative: "Critics and backers disagree.",
	}}
	f := newFixture(t, fake)

	empty, err := f.svc.DebateMap(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, NoDebateMessage, empty.Narrative)
	assert.Empty(t, empty.Points)

	f.seed(t,
		types.FeedbackRecord{Text: "too costly", Sentiment: types.SentimentNegative},
		types.FeedbackRecord{Text: "burden on us", Sentiment: types.SentimentNegative, StakeholderType: "SME"},
		types.FeedbackRecord{Text: "good for growth", Sentiment: types.SentimentPositive},
		types.FeedbackRecord{Text: "great news", Sentiment: types.SentimentPositive},
	)
	dm, err := f.svc.DebateMap(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, dm.Points, 4)
	require.Len(t, dm.Clusters, 2)
	assert.Equal(t, "Critics and backers disagree.", dm.Narrative)
	assert.Equal(t, types.SentimentNegative, dm.Clusters[0].AverageSentiment)
	assert.Equal(t, []string{"Backers"}, dm.ConsensusAreas)
	require.Len(t, dm.ConflictZones, 1)
	assert.Equal(t, "Critics", dm.ConflictZones[0].Cluster1)
	for _, p := range dm.Points {
		assert.NotEqual(t, types.Unclustered, p.ClusterID)
	}
}

func TestGenerateDocument(t *testing.T) {
	fake := &llm.FakeClient{ByPhase: map[string]string{
		llm.PhaseDocument: `{"title":"Briefing","sections":[{"title":"Executive Summary","content":"ok"}]}`,
	}}
	f := newFixture(t, fake)
	ctx := context.Background()

	_, err := f.svc.GenerateDocument(ctx, DocumentInput{DocumentType: types.DocumentBriefing})
	assert.True(t, types.IsValidation(err))
	_, err = f.svc.GenerateDocument(ctx, DocumentInput{DocumentType: "memo", Topic: "GST"})
	assert.True(t, types.IsValidation(err))

	f.seed(t, types.FeedbackRecord{Text: "only one", Sentiment: types.SentimentNegative})
	_, err = f.svc.GenerateDocument(ctx, DocumentInput{DocumentType: types.DocumentBriefing, Topic: "GST"})
	assert.True(t, types.IsValidation(err))
	assert.Zero(t, fake.Calls())

	for i := 0; i < 5; i++ {
		f.seed(t, types.FeedbackRecord{Text: "broadly supportive view", Sentiment: types.SentimentPositive})
	}
	_, err = f.svc.GenerateDocument(ctx, DocumentInput{DocumentType: types.DocumentBriefing, Topic: "GST", SentimentFilter: "negative"})
	assert.True(t, types.IsValidation(err), "only one negative row")

	doc, err := f.svc.GenerateDocument(ctx, DocumentInput{DocumentType: types.DocumentBriefing, Topic: "GST", SentimentFilter: "all"})
	require.NoError(t, err)
	assert.Equal(t, "Briefing", doc.Title)
	assert.Equal(t, 6, doc.Metadata.TotalFeedbackAnalyzed)
	require.NotEmpty(t, doc.ReportKey)

	back, err := f.svc.Report(ctx, doc.ReportKey)
	require.NoError(t, err)
	assert.Equal(t, doc.Title, back.Title)
	assert.Equal(t, doc.Sections, back.Sections)
}
