package types

// Cluster is a thematic grouping over one clustering batch.
type Cluster struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	FeedbackIndices []int    `json:"feedback_indices"`
	KeyThemes       []string `json:"key_themes"`
}

// NarrativeCluster is the cluster view handed to the narrative generator.
type NarrativeCluster struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

// Unclustered marks a debate map point without a cluster.
const Unclustered = -1

// DebateMapPoint is a 2-D projection of one feedback item.
type DebateMapPoint struct {
	ID              string    `json:"id"`
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	ClusterID       int       `json:"clusterId"`
	Text            string    `json:"text"`
	Sentiment       Sentiment `json:"sentiment"`
	StakeholderType *string   `json:"stakeholderType"`
}

// DebateCluster summarizes a cluster for the debate map.
type DebateCluster struct {
	ID               int       `json:"id"`
	Label            string    `json:"label"`
	Size             int       `json:"size"`
	AverageSentiment Sentiment `json:"averageSentiment"`
	KeyThemes        []string  `json:"keyThemes"`
	Color            string    `json:"color"`
}

// ConflictZone pairs clusters with opposing dominant sentiment.
type ConflictZone struct {
	Cluster1    string `json:"cluster1"`
	Cluster2    string `json:"cluster2"`
	Description string `json:"description"`
}

// DebateMap is the presentation-ready projection of a clustered batch.
type DebateMap struct {
	Points         []DebateMapPoint `json:"points"`
	Clusters       []DebateCluster  `json:"clusters"`
	Narrative      string           `json:"narrative"`
	ConflictZones  []ConflictZone   `json:"conflictZones"`
	ConsensusAreas []string         `json:"consensusAreas"`
}
