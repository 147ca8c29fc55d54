package projection

import (
	"math"

	"policyinsight/internal/analysis"
	"policyinsight/internal/types"
)

// UnknownMonth buckets rows without a usable timestamp.
const UnknownMonth = "Unknown"

// BuildAnalytics aggregates persisted rows for dashboards.
func BuildAnalytics(rows []types.FeedbackRecord) types.Analytics {
	out := types.Analytics{
		SentimentDistribution: map[types.Sentiment]int{
			types.SentimentPositive: 0,
			types.SentimentNegative: 0,
			types.SentimentNeutral:  0,
		},
		HistoricalConcerns: map[string]types.ConcernBucket{},
		TotalFeedback:      len(rows),
	}
	var legal, compliance, growth int
	languages := map[types.Language]struct{}{}
	stakeholders := map[string]struct{}{}

	for _, r := range rows {
		out.SentimentDistribution[analysis.NormalizeSentiment(string(r.Sentiment))]++
		if r.IsSpam {
			out.SpamCount++
		}
		legal += r.LegalRiskScore
		compliance += r.ComplianceScore
		growth += r.BusinessGrowthScore

		bucket := UnknownMonth
		if !r.CreatedAt.IsZero() {
			bucket = r.CreatedAt.UTC().Format("2006-01")
		}
		b := out.HistoricalConcerns[bucket]
		if n := len(r.EdgeCaseFlags); n > 0 {
			b.Count += n
		} else {
			b.Count++
		}
		out.HistoricalConcerns[bucket] = b

		if r.Language != "" {
			languages[r.Language] = struct{}{}
		}
		if r.StakeholderType != "" {
			stakeholders[r.StakeholderType] = struct{}{}
		}
	}

	total := len(rows)
	if total > 0 {
		for k, b := range out.HistoricalConcerns {
			b.Percent = round2(float64(b.Count) / float64(total) * 100)
			out.HistoricalConcerns[k] = b
		}
		out.AverageLegalRisk = round2(float64(legal) / float64(total))
		out.AverageComplianceDiff = round2(float64(compliance) / float64(total))
		out.AverageBusinessGrowth = round2(float64(growth) / float64(total))
		out.AverageSubmissionsPerDay = (total + 29) / 30
	}
	out.TotalLanguages = max(1, len(languages))
	out.TotalStakeholderTypes = max(1, len(stakeholders))
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
