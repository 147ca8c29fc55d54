package types

// ConcernBucket counts edge-case flags raised in one month.
type ConcernBucket struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Analytics aggregates persisted feedback for dashboards.
type Analytics struct {
	SentimentDistribution    map[Sentiment]int        `json:"sentimentDistribution"`
	HistoricalConcerns       map[string]ConcernBucket `json:"historicalConcernPatterns"`
	TotalFeedback            int                      `json:"totalFeedback"`
	SpamCount                int                      `json:"spamCount"`
	AverageLegalRisk         float64                  `json:"averageLegalRisk"`
	AverageComplianceDiff    float64                  `json:"averageComplianceDifficulty"`
	AverageBusinessGrowth    float64                  `json:"averageBusinessGrowth"`
	AverageSubmissionsPerDay int                      `json:"averageSubmissionsPerDay"`
	TotalLanguages           int                      `json:"totalLanguages"`
	TotalStakeholderTypes    int                      `json:"totalStakeholderTypes"`
}
