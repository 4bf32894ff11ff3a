package types

// --------------------------------------------
// Call input
// --------------------------------------------

// CallMetadata is optional context supplied alongside a transcript.
// CallType is one of discovery, demo, negotiation, close.
type CallMetadata struct {
	Company         string  `json:"company,omitempty"`
	DealValue       float64 `json:"deal_value,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
	CallType        string  `json:"call_type,omitempty"`
}

// CallRecord is one row of the demo dataset workbook.
type CallRecord struct {
	CallID     string  `json:"call_id"`
	Company    string  `json:"company,omitempty"`
	CallType   string  `json:"call_type,omitempty"`
	DealValue  float64 `json:"deal_value,omitempty"`
	Transcript string  `json:"transcript"`
}

// --------------------------------------------
// Extraction outputs
// --------------------------------------------

// ExtractedEntities holds entity mentions in detection order; duplicates
// are kept as they appear in the transcript.
type ExtractedEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Money         []string `json:"money"`
	Dates         []string `json:"dates"`
	Competitors   []string `json:"competitors"`
}

// Empty reports whether no entity of any kind was found.
func (e ExtractedEntities) Empty() bool {
	return len(e.People) == 0 && len(e.Organizations) == 0 &&
		len(e.Money) == 0 && len(e.Dates) == 0 && len(e.Competitors) == 0
}

// TalkRatio splits the word count between rep and prospect.
// RepPercentage + ProspectPercentage = 100.0 (both 50.0 when TotalWords is 0).
type TalkRatio struct {
	RepPercentage      float64 `json:"rep_percentage"`
	ProspectPercentage float64 `json:"prospect_percentage"`
	TotalWords         int     `json:"total_words"`
}

// SentimentPoint is one non-blank line of the call. Timestamp is the
// relative call position in [0,1]; SentimentScore is ternary (-0.5, 0, 0.5).
type SentimentPoint struct {
	Timestamp       float64 `json:"timestamp"`
	SentimentScore  float64 `json:"sentiment_score"`
	EngagementLevel float64 `json:"engagement_level"`
}

// --------------------------------------------
// Objections
// --------------------------------------------

type Objection struct {
	Text                string  `json:"text"`
	Timestamp           float64 `json:"timestamp"`
	Category            string  `json:"category"`
	RecommendedResponse string  `json:"recommended_response"`
}

// ObjectionStats summarizes detected objections for one call.
type ObjectionStats struct {
	TotalObjections int            `json:"total_objections"`
	Categories      map[string]int `json:"categories"`
	MostCommon      string         `json:"most_common,omitempty"`
	ObjectionRate   float64        `json:"objection_rate"`
}

// --------------------------------------------
// Intent
// --------------------------------------------

type IntentResult struct {
	PrimaryIntent string             `json:"primary_intent"`
	Confidence    float64            `json:"confidence"`
	AllScores     map[string]float64 `json:"all_scores"`
	Reasoning     string             `json:"reasoning"`
}

// IntentTrend aggregates intent classifications over multiple calls.
type IntentTrend struct {
	Trend              string             `json:"trend"`
	IntentDistribution map[string]float64 `json:"intent_distribution,omitempty"`
	Insights           []string           `json:"insights"`
	SampleSize         int                `json:"sample_size,omitempty"`
}

// --------------------------------------------
// Scoring
// --------------------------------------------

// ScoreReport is the DealScorer output: composite score, risk band,
// per-factor scores and derived guidance.
type ScoreReport struct {
	DealScore       float64            `json:"deal_score"`
	RiskLevel       string             `json:"risk_level"`
	FactorScores    map[string]float64 `json:"factor_scores"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
}

// --------------------------------------------
// External generative service
// --------------------------------------------

// NextActionPayload is one entry of the external service's
// next_best_actions array. Priority supplied by the service is discarded
// during merge; positions renumber 1..5.
type NextActionPayload struct {
	Action  string `json:"action"`
	DueDate string `json:"due_date,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// LLMInsights is the qualitative contribution of the external service.
// Missing or malformed fields default to empty collections.
type LLMInsights struct {
	NextBestActions []NextActionPayload `json:"next_best_actions"`
	DealRationale   string              `json:"deal_score_rationale,omitempty"`
	TalkRatioNotes  string              `json:"talk_ratio_commentary,omitempty"`
	SentimentNotes  string              `json:"sentiment_notes,omitempty"`
}

// NextAction is a merged, renumbered action item.
type NextAction struct {
	Action   string `json:"action"`
	Priority int    `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
	Owner    string `json:"owner,omitempty"`
}

// --------------------------------------------
// Coaching
// --------------------------------------------

// CoachingMoment severity is low, medium or high.
type CoachingMoment struct {
	Type        string  `json:"type"`
	Timestamp   float64 `json:"timestamp"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Suggestion  string  `json:"suggestion,omitempty"`
}

// --------------------------------------------
// FINAL analysis record
// --------------------------------------------

// AnalysisResult is the single record produced per analysis invocation.
// On pipeline failure only Error, ProcessingTimeMs, DealScore and
// ConfidenceScore carry meaning (degraded-result contract).
type AnalysisResult struct {
	AnalysisID           string             `json:"analysis_id,omitempty"`
	DealScore            float64            `json:"deal_score"`
	RiskLevel            string             `json:"risk_level,omitempty"`
	IntentClassification string             `json:"intent_classification,omitempty"`
	IntentConfidence     float64            `json:"intent_confidence"`
	DetectedObjections   []Objection        `json:"detected_objections"`
	ObjectionCount       int                `json:"objection_count"`
	TalkRatio            TalkRatio          `json:"talk_ratio"`
	SentimentTimeline    []SentimentPoint   `json:"sentiment_timeline"`
	KeyTopics            []string           `json:"key_topics"`
	DecisionMakers       []string           `json:"decision_makers_identified"`
	BudgetMentions       []string           `json:"budget_mentions"`
	TimelineUrgency      []string           `json:"timeline_urgency"`
	CompetitorMentions   []string           `json:"competitor_mentions"`
	NextBestActions      []NextAction       `json:"next_best_actions"`
	ConfidenceScore      float64            `json:"confidence_score"`
	ScoringFactors       map[string]float64 `json:"scoring_factors,omitempty"`
	ScoringInsights      []string           `json:"scoring_insights,omitempty"`
	Recommendations      []string           `json:"recommendations,omitempty"`
	IntentReasoning      string             `json:"intent_reasoning,omitempty"`
	CoachableMoments     []CoachingMoment   `json:"coachable_moments"`
	ProcessingTimeMs     int64              `json:"processing_time_ms"`
	Error                string             `json:"error,omitempty"`
}
