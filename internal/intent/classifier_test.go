package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-insights-go/internal/types"
)

func TestClassifyEmptyTranscript(t *testing.T) {
	c := New()

	result := c.Classify("", nil)

	assert.Equal(t, ReadyToBuy, result.PrimaryIntent) // first declared wins the all-zero tie
	assert.Equal(t, 0.0, result.Confidence)
	for intent, score := range result.AllScores {
		assert.Equal(t, 0.0, score, "intent %s", intent)
	}
}

func TestClassifyReadyToBuy(t *testing.T) {
	c := New()

	result := c.Classify("We are ready to buy and want to sign the contract this week.", nil)

	assert.Equal(t, ReadyToBuy, result.PrimaryIntent)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Greater(t, result.AllScores[ReadyToBuy], result.AllScores[Researching])
	assert.Contains(t, result.Reasoning, "ready_to_buy")
}

func TestClassifyStalled(t *testing.T) {
	c := New()

	result := c.Classify("I need time to think about it, maybe later, eventually down the road.", nil)

	assert.Equal(t, Stalled, result.PrimaryIntent)
	assert.Greater(t, result.AllScores[Stalled], 0.0)
}

func TestConfidenceWithinBounds(t *testing.T) {
	c := New()

	for _, tr := range []string{
		"",
		"show me a demo and explain how does this work",
		"we compare you versus the competitor",
		"buy buy buy sign sign sign",
	} {
		result := c.Classify(tr, nil)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestNegativeIndicatorsFloorAtZero(t *testing.T) {
	c := New()

	// one "ready" occurrence (1.0) against two ready_to_buy negative
	// indicators (2 x 0.5) leaves exactly zero, never negative.
	result := c.Classify("we are just looking and not ready", nil)
	assert.Equal(t, 0.0, result.AllScores[ReadyToBuy])
}

func TestTalkRatioMultipliers(t *testing.T) {
	c := New()
	transcript := "we want to buy"

	base := c.Classify(transcript, &types.TalkRatio{ProspectPercentage: 45, RepPercentage: 55})
	engaged := c.Classify(transcript, &types.TalkRatio{ProspectPercentage: 65, RepPercentage: 35})
	quiet := c.Classify(transcript, &types.TalkRatio{ProspectPercentage: 25, RepPercentage: 75})

	assert.Greater(t, engaged.AllScores[ReadyToBuy], base.AllScores[ReadyToBuy])
	assert.Less(t, quiet.AllScores[ReadyToBuy], base.AllScores[ReadyToBuy])
}

func TestReadyToBuySecondaryMultiplier(t *testing.T) {
	c := New()

	// prospect > 50 applies the dedicated ready_to_buy x1.3
	result := c.Classify("buy", &types.TalkRatio{ProspectPercentage: 55, RepPercentage: 45})
	assert.InDelta(t, 1.3, result.AllScores[ReadyToBuy], 1e-9)
}

func TestReasoningMentionsKeywordsAndBand(t *testing.T) {
	c := New()

	result := c.Classify("we will purchase and sign", nil)
	assert.Contains(t, result.Reasoning, "Detected keywords:")
	assert.Contains(t, result.Reasoning, "High confidence")
}

func TestAnalyzeTrendNoData(t *testing.T) {
	trend := AnalyzeTrend(nil)
	assert.Equal(t, "no_data", trend.Trend)
	assert.Empty(t, trend.Insights)
}

func TestAnalyzeTrendDistribution(t *testing.T) {
	historical := []types.IntentResult{
		{PrimaryIntent: ReadyToBuy},
		{PrimaryIntent: ReadyToBuy},
		{PrimaryIntent: Researching},
		{PrimaryIntent: Stalled},
	}

	trend := AnalyzeTrend(historical)

	require.Equal(t, "analyzed", trend.Trend)
	assert.Equal(t, 4, trend.SampleSize)
	assert.InDelta(t, 50.0, trend.IntentDistribution[ReadyToBuy], 1e-9)
	require.NotEmpty(t, trend.Insights)
	assert.Contains(t, trend.Insights[0], "Strong buying intent")
}

func TestAnalyzeTrendHighStallRate(t *testing.T) {
	historical := []types.IntentResult{
		{PrimaryIntent: Stalled},
		{PrimaryIntent: Stalled},
		{PrimaryIntent: Researching},
	}

	trend := AnalyzeTrend(historical)
	found := false
	for _, ins := range trend.Insights {
		if strings.Contains(ins, "High stall rate") {
			found = true
		}
	}
	assert.True(t, found, "expected a stall-rate insight, got %v", trend.Insights)
}
