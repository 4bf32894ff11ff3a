package insight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-insights-go/internal/extractor"
	"call-insights-go/internal/intent"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/objection"
	"call-insights-go/internal/scoring"
	"call-insights-go/internal/types"
)

// --- mocks ---

type stubTagger struct{}

func (stubTagger) Tag(string) (types.ExtractedEntities, error) {
	return types.ExtractedEntities{}, nil
}

type mockAnalyzer struct {
	insights types.LLMInsights
	err      error
	calls    int
}

func (m *mockAnalyzer) AnalyzeTranscript(_ context.Context, _ string, _ *types.CallMetadata) (types.LLMInsights, error) {
	m.calls++
	return m.insights, m.err
}

func newTestGenerator(llm Analyzer) *Generator {
	return &Generator{
		extractor:  extractor.NewWithTagger(stubTagger{}),
		objections: objection.New(),
		intents:    intent.New(),
		scorer:     scoring.New(),
		llm:        llm,
		log:        logger.New().WithComponent("insight-generator-test"),
	}
}

// --- tests ---

func TestGenerateComprehensiveAnalysis(t *testing.T) {
	llm := &mockAnalyzer{insights: types.LLMInsights{
		NextBestActions: []types.NextActionPayload{
			{Action: "send proposal", DueDate: "friday", Owner: "rep"},
		},
	}}
	g := newTestGenerator(llm)

	transcript := "Rep: Are you ready to move forward?\nProspect: Yes, we want to buy and can sign this week."
	result := g.GenerateComprehensiveAnalysis(context.Background(), transcript, &types.CallMetadata{CallType: "close"})

	assert.Empty(t, result.Error)
	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, intent.ReadyToBuy, result.IntentClassification)
	assert.GreaterOrEqual(t, result.DealScore, 0.0)
	assert.LessOrEqual(t, result.DealScore, 100.0)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))
	require.Len(t, result.NextBestActions, 1)
	assert.Equal(t, 1, result.NextBestActions[0].Priority)
	assert.Equal(t, "send proposal", result.NextBestActions[0].Action)
	assert.Len(t, result.ScoringFactors, 6)
}

func TestGenerateDegradedResultOnExternalFailure(t *testing.T) {
	llm := &mockAnalyzer{err: errors.New("gateway timeout")}
	g := newTestGenerator(llm)

	result := g.GenerateComprehensiveAnalysis(context.Background(), "Prospect: hello there", nil)

	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.Error, "gateway timeout")
	assert.Equal(t, 0.0, result.DealScore)
	assert.Equal(t, 0.0, result.ConfidenceScore)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))
}

func TestMergeNextActionsTopFiveRenumbered(t *testing.T) {
	var payloads []types.NextActionPayload
	for i := 0; i < 7; i++ {
		payloads = append(payloads, types.NextActionPayload{Action: fmt.Sprintf("action-%d", i)})
	}

	actions := mergeNextActions(types.LLMInsights{NextBestActions: payloads})

	require.Len(t, actions, 5)
	for i, a := range actions {
		assert.Equal(t, i+1, a.Priority)
		assert.Equal(t, fmt.Sprintf("action-%d", i), a.Action)
	}
}

func TestCoachingMomentLowProspectEngagement(t *testing.T) {
	g := newTestGenerator(&mockAnalyzer{})

	// rep 3 words, prospect 1 word: prospect 25%
	transcript := "Rep: one two three\nProspect: one"
	result := g.GenerateComprehensiveAnalysis(context.Background(), transcript, nil)

	assert.Equal(t, 25.0, result.TalkRatio.ProspectPercentage)
	assert.True(t, hasMoment(result.CoachableMoments, "low_prospect_engagement"))
	assert.False(t, hasMoment(result.CoachableMoments, "low_rep_control"))
}

func TestCoachingMomentLowRepControl(t *testing.T) {
	g := newTestGenerator(&mockAnalyzer{})

	transcript := "Rep: one\nProspect: one two three"
	result := g.GenerateComprehensiveAnalysis(context.Background(), transcript, nil)

	assert.Equal(t, 75.0, result.TalkRatio.ProspectPercentage)
	assert.True(t, hasMoment(result.CoachableMoments, "low_rep_control"))
	assert.False(t, hasMoment(result.CoachableMoments, "low_prospect_engagement"))
}

func TestCoachingMomentBalancedTalkRatio(t *testing.T) {
	g := newTestGenerator(&mockAnalyzer{})

	transcript := "Rep: one two\nProspect: one two"
	result := g.GenerateComprehensiveAnalysis(context.Background(), transcript, nil)

	assert.Equal(t, 50.0, result.TalkRatio.ProspectPercentage)
	assert.False(t, hasMoment(result.CoachableMoments, "low_prospect_engagement"))
	assert.False(t, hasMoment(result.CoachableMoments, "low_rep_control"))
}

func TestCoachingMomentLateObjection(t *testing.T) {
	moments := identifyCoachableMoments(
		[]types.Objection{{Category: "price", Timestamp: 0.9, RecommendedResponse: "offer payment plans"}},
		nil,
		types.TalkRatio{ProspectPercentage: 50, RepPercentage: 50},
	)

	require.Len(t, moments, 1)
	assert.Equal(t, "late_objection", moments[0].Type)
	assert.Equal(t, "high", moments[0].Severity)
	assert.Equal(t, "offer payment plans", moments[0].Suggestion)
	assert.Contains(t, moments[0].Description, "price")
}

func TestCoachingMomentSentimentDrop(t *testing.T) {
	timeline := []types.SentimentPoint{
		{Timestamp: 0.2, SentimentScore: 0.5},
		{Timestamp: 0.4, SentimentScore: -0.5},
	}
	moments := identifyCoachableMoments(nil, timeline, types.TalkRatio{ProspectPercentage: 50})

	require.Len(t, moments, 1)
	assert.Equal(t, "sentiment_drop", moments[0].Type)
	assert.Equal(t, 0.4, moments[0].Timestamp)
}

func TestGenerateExecutiveSummary(t *testing.T) {
	g := newTestGenerator(&mockAnalyzer{})

	analysis := types.AnalysisResult{
		DealScore:            85.0,
		RiskLevel:            "low",
		IntentClassification: intent.ReadyToBuy,
		ObjectionCount:       2,
	}
	summary := g.GenerateExecutiveSummary(analysis)
	assert.Contains(t, summary, "Strong deal health (score: 85.0)")
	assert.Contains(t, summary, "Buyer intent: ready_to_buy")
	assert.Contains(t, summary, "2 objections detected")
	assert.NotContains(t, summary, "High risk")

	weak := types.AnalysisResult{
		DealScore:            32.5,
		RiskLevel:            "critical",
		IntentClassification: intent.Stalled,
		Recommendations:      []string{"Qualify budget and timeline early in the sales process"},
	}
	summary = g.GenerateExecutiveSummary(weak)
	assert.Contains(t, summary, "Weak deal health (score: 32.5)")
	assert.Contains(t, summary, "High risk deal - requires attention")
	assert.Contains(t, summary, "Key focus: Qualify budget")
}

func hasMoment(moments []types.CoachingMoment, momentType string) bool {
	for _, m := range moments {
		if m.Type == momentType {
			return true
		}
	}
	return false
}
