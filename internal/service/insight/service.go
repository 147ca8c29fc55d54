// Package insight runs the corpus-level pipeline over stored feedback:
// clustering, narratives, summaries, word clouds, debate maps and documents.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"policyinsight/internal/cluster"
	"policyinsight/internal/logging"
	"policyinsight/internal/narrative"
	"policyinsight/internal/projection"
	feedbackrepo "policyinsight/internal/repository/feedback"
	"policyinsight/internal/repository/report"
	"policyinsight/internal/types"
)

const (
	NoClusterFeedbackMessage = "No feedback available yet to generate clusters. Gather more input to unlock debate insights."
	NoSummaryFeedbackMessage = "No feedback available yet to summarize. Encourage stakeholders to share their viewpoints to unlock insights."
	NoDebateMessage          = "No debate landscape yet. Collect more feedback to unlock insights."

	// DocumentFeedbackLimit caps how many rows feed one generated document.
	DocumentFeedbackLimit = 50
)

// BatchEmbedder embeds a batch of texts in order. Failed items may be nil.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Service reads stored feedback and runs the insight pipeline over it.
type Service struct {
	store    feedbackrepo.Store
	engine   *cluster.Engine
	writer   *narrative.Writer
	embedder BatchEmbedder
	reports  report.Store
	now      func() time.Time
}

// New wires the service. embedder and reports may be nil: points then use
// the seeded projection and documents are not archived.
func New(store feedbackrepo.Store, engine *cluster.Engine, writer *narrative.Writer, embedder BatchEmbedder, reports report.Store) *Service {
	return &Service{
		store:    store,
		engine:   engine,
		writer:   writer,
		embedder: embedder,
		reports:  reports,
		now:      time.Now,
	}
}

// ClusterRequest selects the rows to cluster and the target count.
type ClusterRequest struct {
	NumClusters int    `json:"num_clusters"`
	PolicyID    string `json:"policyId,omitempty"`
}

// ClusterResult groups stored rows by cluster name.
type ClusterResult struct {
	Clusters        map[string][]types.FeedbackRecord `json:"clusters"`
	Groups          []types.Cluster                   `json:"groups"`
	SilhouetteScore *float64                          `json:"silhouetteScore"`
	NumClusters     int                               `json:"numClusters"`
	Narrative       string                            `json:"narrative"`
}

// Cluster partitions the stored feedback and narrates the result.
func (s *Service) Cluster(ctx context.Context, req ClusterRequest) (ClusterResult, error) {
	k := req.NumClusters
	if k == 0 {
		k = cluster.DefaultK
	}
	rows, err := s.rows(ctx, feedbackrepo.Filter{PolicyID: strings.TrimSpace(req.PolicyID)})
	if err != nil {
		return ClusterResult{}, err
	}
	logging.Info("clustering feedback", "rows", len(rows), "policy", req.PolicyID, "k", k)
	if len(rows) == 0 {
		return ClusterResult{
			Clusters:  map[string][]types.FeedbackRecord{},
			Groups:    []types.Cluster{},
			Narrative: NoClusterFeedbackMessage,
		}, nil
	}

	clusters := s.engine.Cluster(ctx, aligned(rows), k)
	byName := make(map[string][]types.FeedbackRecord, len(clusters))
	described := make([]types.NarrativeCluster, 0, len(clusters))
	for i, c := range clusters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("Cluster %d", i+1)
		}
		if _, dup := byName[name]; dup {
			name = fmt.Sprintf("%s (%d)", name, i+1)
		}
		members := make([]types.FeedbackRecord, 0, len(c.FeedbackIndices))
		counts := make(map[types.Sentiment]int, len(types.Sentiments))
		for _, idx := range c.FeedbackIndices {
			if idx >= 0 && idx < len(rows) {
				members = append(members, rows[idx])
				counts[rows[idx].Sentiment]++
			}
		}
		byName[name] = members
		described = append(described, types.NarrativeCluster{
			Name:        c.Name,
			Description: c.Description,
			Sentiment:   projection.DominantSentiment(counts),
		})
	}

	return ClusterResult{
		Clusters:    byName,
		Groups:      clusters,
		NumClusters: len(clusters),
		Narrative:   s.writer.Narrate(ctx, described, len(rows)),
	}, nil
}

// SummaryResult is the AI summary of stored feedback.
type SummaryResult struct {
	Summary       string    `json:"summary"`
	FeedbackCount int       `json:"feedbackCount"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Summary condenses the non-blank stored texts, optionally for one policy.
func (s *Service) Summary(ctx context.Context, policyID string) (SummaryResult, error) {
	rows, err := s.rows(ctx, feedbackrepo.Filter{PolicyID: strings.TrimSpace(policyID)})
	if err != nil {
		return SummaryResult{}, err
	}
	ts := texts(rows)
	out := SummaryResult{FeedbackCount: len(ts), GeneratedAt: s.now().UTC()}
	if len(ts) == 0 {
		out.Summary = NoSummaryFeedbackMessage
		return out, nil
	}
	out.Summary = s.writer.Summarize(ctx, ts)
	return out, nil
}

// WordCloudResult maps keywords to weights.
type WordCloudResult struct {
	Words         map[string]int `json:"words"`
	TotalFeedback int            `json:"totalFeedback"`
}

// WordCloud extracts keywords from stored texts. language matches
// case-insensitively; empty means every language.
func (s *Service) WordCloud(ctx context.Context, policyID, language string) (WordCloudResult, error) {
	rows, err := s.rows(ctx, feedbackrepo.Filter{PolicyID: strings.TrimSpace(policyID)})
	if err != nil {
		return WordCloudResult{}, err
	}
	language = strings.TrimSpace(language)
	var ts []string
	for _, r := range rows {
		if language != "" && !strings.EqualFold(string(r.Language), language) {
			continue
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			ts = append(ts, t)
		}
	}
	if len(ts) == 0 {
		return WordCloudResult{Words: map[string]int{}}, nil
	}
	return WordCloudResult{Words: s.writer.WordCloud(ctx, ts), TotalFeedback: len(ts)}, nil
}

// DebateMap projects stored feedback into clustered 2-D points, oldest first.
func (s *Service) DebateMap(ctx context.Context, policyID string) (types.DebateMap, error) {
	rows, err := s.rows(ctx, feedbackrepo.Filter{PolicyID: strings.TrimSpace(policyID), Ascending: true})
	if err != nil {
		return types.DebateMap{}, err
	}
	if len(rows) == 0 {
		return types.DebateMap{
			Points:         []types.DebateMapPoint{},
			Clusters:       []types.DebateCluster{},
			Narrative:      NoDebateMessage,
			ConflictZones:  []types.ConflictZone{},
			ConsensusAreas: []string{},
		}, nil
	}

	all := aligned(rows)
	var embeddings [][]float32
	if s.embedder != nil {
		embeddings, err = s.embedder.EmbedBatch(ctx, all)
		if err != nil {
			logging.Warn("debate map embeddings incomplete, using seeded positions", "err", err)
		}
	}

	clusters := s.engine.Cluster(ctx, all, projection.DebateClusterCount(len(rows)))
	dm := projection.BuildDebateMap(rows, embeddings, clusters)
	dm.Narrative = s.writer.Narrate(ctx, projection.NarrativeClusters(dm.Clusters), len(rows))
	return dm, nil
}

// DocumentInput asks for a document over stored feedback.
type DocumentInput struct {
	DocumentType    types.DocumentType `json:"documentType"`
	Topic           string             `json:"topic"`
	SentimentFilter string             `json:"sentimentFilter,omitempty"`
}

// GeneratedDocument is a document plus the key it was archived under.
type GeneratedDocument struct {
	types.Document
	ReportKey string `json:"reportKey,omitempty"`
}

// GenerateDocument drafts a document from up to DocumentFeedbackLimit rows
// and archives it when a report store is configured. Archival failure is
// logged, not returned.
func (s *Service) GenerateDocument(ctx context.Context, in DocumentInput) (GeneratedDocument, error) {
	if err := narrative.ValidateDocumentTarget(in.DocumentType, in.Topic); err != nil {
		return GeneratedDocument{}, err
	}

	f := feedbackrepo.Filter{Limit: DocumentFeedbackLimit}
	if sf := strings.TrimSpace(in.SentimentFilter); sf != "" && !strings.EqualFold(sf, "all") {
		f.Sentiment = types.Sentiment(sf)
		for _, known := range types.Sentiments {
			if strings.EqualFold(sf, string(known)) {
				f.Sentiment = known
			}
		}
	}
	rows, err := s.rows(ctx, f)
	if err != nil {
		return GeneratedDocument{}, err
	}

	doc, err := s.writer.GenerateDocument(ctx, narrative.DocumentRequest{
		DocumentType: in.DocumentType,
		Topic:        in.Topic,
		Texts:        texts(rows),
	})
	if err != nil {
		return GeneratedDocument{}, err
	}
	out := GeneratedDocument{Document: doc}
	if s.reports != nil {
		key, aerr := report.Archive(ctx, s.reports, uuid.NewString(), doc)
		if aerr != nil {
			logging.Warn("report archive failed", "type", doc.DocumentType, "err", aerr)
		} else {
			out.ReportKey = key
		}
	}
	return out, nil
}

// Report reads back an archived document.
func (s *Service) Report(ctx context.Context, key string) (types.Document, error) {
	if s.reports == nil {
		return types.Document{}, report.ErrNotFound
	}
	return report.Load(ctx, s.reports, key)
}

func (s *Service) rows(ctx context.Context, f feedbackrepo.Filter) ([]types.FeedbackRecord, error) {
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	return rows, nil
}

// aligned returns one trimmed text per row so cluster indices address rows.
func aligned(rows []types.FeedbackRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.TrimSpace(r.Text)
	}
	return out
}

// texts returns the trimmed non-blank texts of rows.
func texts(rows []types.FeedbackRecord) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if t := strings.TrimSpace(r.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
