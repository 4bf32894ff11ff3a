package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"call-insights-go/internal/extractor"
	"call-insights-go/internal/intent"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/objection"
	"call-insights-go/internal/scoring"
	"call-insights-go/internal/types"
)

// Analyzer is the external generative-language service boundary.
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, transcript string, metadata *types.CallMetadata) (types.LLMInsights, error)
}

// Generator orchestrates the full pipeline: feature extraction, objection
// detection, intent classification, deal scoring, the one external-service
// call, and the merge into a single AnalysisResult. All components are
// immutable after construction, so one Generator serves concurrent calls.
type Generator struct {
	extractor  *extractor.Extractor
	objections *objection.Detector
	intents    *intent.Classifier
	scorer     *scoring.Scorer
	llm        Analyzer
	log        *logrus.Entry
}

func New(llm Analyzer) *Generator {
	return &Generator{
		extractor:  extractor.New(),
		objections: objection.New(),
		intents:    intent.New(),
		scorer:     scoring.New(),
		llm:        llm,
		log:        logger.New().WithComponent("insight-generator"),
	}
}

// GenerateComprehensiveAnalysis analyzes one transcript. Every failure in
// the chain, the external-service call included, is converted to the
// degraded result; nothing propagates to the caller.
func (g *Generator) GenerateComprehensiveAnalysis(ctx context.Context, transcript string, metadata *types.CallMetadata) (result types.AnalysisResult) {
	start := time.Now()
	analysisID := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			g.log.WithField("panic", r).Error("analysis panicked")
			result = degraded(analysisID, fmt.Sprintf("analysis panic: %v", r), start)
		}
	}()

	entities := g.extractor.ExtractEntities(transcript)
	talkRatio := g.extractor.CalculateTalkRatio(transcript)
	keyTopics := g.extractor.ExtractKeyTopics(transcript)
	timeline := g.extractor.DetectSentimentTimeline(transcript)

	objections := g.objections.Detect(transcript)

	intentResult := g.intents.Classify(transcript, &talkRatio)

	// Next actions arrive from the external service after scoring, so the
	// next-steps factor always sees an empty list here.
	scoreReport := g.scorer.Score(scoring.Input{
		SentimentTimeline: timeline,
		TalkRatio:         talkRatio,
		Objections:        objections,
		NextActions:       nil,
		BudgetMentions:    entities.Money,
		TimelineUrgency:   entities.Dates,
		DecisionMakers:    entities.People,
		Entities:          entities,
	})

	llmInsights, err := g.llm.AnalyzeTranscript(ctx, transcript, metadata)
	if err != nil {
		g.log.WithError(err).Warn("external analysis failed, returning degraded result")
		return degraded(analysisID, err.Error(), start)
	}

	result = types.AnalysisResult{
		AnalysisID:           analysisID,
		DealScore:            scoreReport.DealScore,
		RiskLevel:            scoreReport.RiskLevel,
		IntentClassification: intentResult.PrimaryIntent,
		IntentConfidence:     intentResult.Confidence,
		DetectedObjections:   objections,
		ObjectionCount:       len(objections),
		TalkRatio:            talkRatio,
		SentimentTimeline:    timeline,
		KeyTopics:            keyTopics,
		DecisionMakers:       entities.People,
		BudgetMentions:       entities.Money,
		TimelineUrgency:      entities.Dates,
		CompetitorMentions:   entities.Competitors,
		NextBestActions:      mergeNextActions(llmInsights),
		ConfidenceScore:      intentResult.Confidence,
		ScoringFactors:       scoreReport.FactorScores,
		ScoringInsights:      scoreReport.Insights,
		Recommendations:      scoreReport.Recommendations,
		IntentReasoning:      intentResult.Reasoning,
		CoachableMoments:     identifyCoachableMoments(objections, timeline, talkRatio),
		ProcessingTimeMs:     time.Since(start).Milliseconds(),
	}
	return result
}

func degraded(analysisID, message string, start time.Time) types.AnalysisResult {
	return types.AnalysisResult{
		AnalysisID:       analysisID,
		Error:            message,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		DealScore:        0,
		ConfidenceScore:  0,
	}
}

// mergeNextActions keeps at most the first 5 external actions and renumbers
// priority by array position; any externally supplied priority is discarded.
func mergeNextActions(insights types.LLMInsights) []types.NextAction {
	var actions []types.NextAction
	for i, payload := range insights.NextBestActions {
		if i == 5 {
			break
		}
		actions = append(actions, types.NextAction{
			Action:   payload.Action,
			Priority: i + 1,
			DueDate:  payload.DueDate,
			Owner:    payload.Owner,
		})
	}
	return actions
}

// identifyCoachableMoments applies all four rule families; every matching
// rule fires, ordered by rule declaration then timeline position.
func identifyCoachableMoments(objections []types.Objection, timeline []types.SentimentPoint, talkRatio types.TalkRatio) []types.CoachingMoment {
	var moments []types.CoachingMoment

	for _, point := range timeline {
		if point.SentimentScore > 0.5 && point.EngagementLevel > 0.7 {
			moments = append(moments, types.CoachingMoment{
				Type:        "missed_buying_signal",
				Timestamp:   point.Timestamp,
				Description: "High engagement detected - consider asking for commitment",
				Severity:    "medium",
			})
		}
	}

	for _, obj := range objections {
		if obj.Timestamp > 0.7 {
			moments = append(moments, types.CoachingMoment{
				Type:        "late_objection",
				Timestamp:   obj.Timestamp,
				Description: fmt.Sprintf("Late-stage %s detected", obj.Category),
				Severity:    "high",
				Suggestion:  obj.RecommendedResponse,
			})
		}
	}

	prospect := talkRatio.ProspectPercentage
	if prospect < 30 {
		moments = append(moments, types.CoachingMoment{
			Type:        "low_prospect_engagement",
			Timestamp:   0.5,
			Description: fmt.Sprintf("Prospect only spoke %.1f%% of the time", prospect),
			Severity:    "high",
			Suggestion:  "Ask more open-ended questions to increase prospect participation",
		})
	} else if prospect > 70 {
		moments = append(moments, types.CoachingMoment{
			Type:        "low_rep_control",
			Timestamp:   0.5,
			Description: fmt.Sprintf("Rep only spoke %.1f%% of the time", talkRatio.RepPercentage),
			Severity:    "medium",
			Suggestion:  "Take more control to guide the conversation toward outcomes",
		})
	}

	for i := 1; i < len(timeline); i++ {
		if timeline[i-1].SentimentScore > 0.3 && timeline[i].SentimentScore < -0.3 {
			moments = append(moments, types.CoachingMoment{
				Type:        "sentiment_drop",
				Timestamp:   timeline[i].Timestamp,
				Description: "Significant sentiment drop detected",
				Severity:    "high",
				Suggestion:  "Review what caused the negative shift and address concerns",
			})
		}
	}

	return moments
}

// GenerateExecutiveSummary joins the banded score phrase, intent, objection
// count, risk escalation phrase and the first recommendation.
func (g *Generator) GenerateExecutiveSummary(analysis types.AnalysisResult) string {
	var parts []string

	switch {
	case analysis.DealScore >= 80:
		parts = append(parts, fmt.Sprintf("Strong deal health (score: %.1f)", analysis.DealScore))
	case analysis.DealScore >= 60:
		parts = append(parts, fmt.Sprintf("Moderate deal health (score: %.1f)", analysis.DealScore))
	default:
		parts = append(parts, fmt.Sprintf("Weak deal health (score: %.1f)", analysis.DealScore))
	}

	parts = append(parts, fmt.Sprintf("Buyer intent: %s", analysis.IntentClassification))

	if analysis.ObjectionCount > 0 {
		parts = append(parts, fmt.Sprintf("%d objections detected", analysis.ObjectionCount))
	}

	if analysis.RiskLevel == "high" || analysis.RiskLevel == "critical" {
		parts = append(parts, "High risk deal - requires attention")
	}

	if len(analysis.Recommendations) > 0 {
		parts = append(parts, fmt.Sprintf("Key focus: %s", analysis.Recommendations[0]))
	}

	return strings.Join(parts, ". ") + "."
}
