package intent

import (
	"fmt"

	"call-insights-go/internal/types"
)

// AnalyzeTrend aggregates primary intents across historical calls into a
// distribution with pipeline-health insights. It is a pure function; the
// dashboard collaborator owns querying and presentation.
func AnalyzeTrend(historical []types.IntentResult) types.IntentTrend {
	if len(historical) == 0 {
		return types.IntentTrend{Trend: "no_data", Insights: []string{}}
	}

	counts := map[string]int{}
	for _, r := range historical {
		intent := r.PrimaryIntent
		if intent == "" {
			intent = "unknown"
		}
		counts[intent]++
	}

	total := len(historical)
	distribution := make(map[string]float64, len(counts))
	for k, v := range counts {
		distribution[k] = float64(v) / float64(total) * 100
	}

	var insights []string
	if rate, ok := distribution[ReadyToBuy]; ok {
		if rate > 30 {
			insights = append(insights, fmt.Sprintf("Strong buying intent detected in %.1f%% of calls - good pipeline health.", rate))
		} else if rate < 10 {
			insights = append(insights, fmt.Sprintf("Low buying intent (%.1f%%) - consider qualification improvements.", rate))
		}
	}
	if rate, ok := distribution[Stalled]; ok && rate > 40 {
		insights = append(insights, fmt.Sprintf("High stall rate (%.1f%%) - review objection handling and urgency creation.", rate))
	}

	return types.IntentTrend{
		Trend:              "analyzed",
		IntentDistribution: distribution,
		Insights:           insights,
		SampleSize:         total,
	}
}
