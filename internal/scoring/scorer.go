package scoring

import (
	"fmt"
	"math"
	"strings"

	"call-insights-go/internal/types"
)

// Factor names, used as keys of ScoreReport.FactorScores.
const (
	FactorSentiment   = "positive_sentiment"
	FactorEngagement  = "buyer_engagement"
	FactorObjections  = "objection_resolution"
	FactorNextSteps   = "clear_next_steps"
	FactorBudget      = "budget_timeline"
	FactorDecisionMkr = "decision_maker"
)

// factor carries the fixed composite weight; weights sum to 1.00.
type factor struct {
	name   string
	weight float64
}

var factors = []factor{
	{FactorSentiment, 0.25},
	{FactorEngagement, 0.20},
	{FactorObjections, 0.20},
	{FactorNextSteps, 0.15},
	{FactorBudget, 0.15},
	{FactorDecisionMkr, 0.05},
}

// recommendations is the fixed per-factor guidance used when a factor
// scores below 60.
var recommendations = map[string]string{
	FactorSentiment:   "Focus on building rapport and addressing concerns to improve sentiment",
	FactorEngagement:  "Increase prospect engagement with more questions and active listening",
	FactorObjections:  "Develop better objection handling strategies and responses",
	FactorNextSteps:   "Always end calls with clear, specific next steps and timelines",
	FactorBudget:      "Qualify budget and timeline early in the sales process",
	FactorDecisionMkr: "Identify and engage all key decision makers",
}

// Input is the intermediate data bag assembled by the orchestrator before
// the external-service call, so NextActions is typically still empty when
// the composite is computed.
type Input struct {
	SentimentTimeline []types.SentimentPoint
	TalkRatio         types.TalkRatio
	Objections        []types.Objection
	NextActions       []types.NextAction
	BudgetMentions    []string
	TimelineUrgency   []string
	DecisionMakers    []string
	Entities          types.ExtractedEntities
}

// Scorer combines six factor scores into the weighted 0-100 deal score.
type Scorer struct{}

func New() *Scorer {
	return &Scorer{}
}

// Score computes the composite deal-health score, risk band, insights and
// recommendations.
func (s *Scorer) Score(in Input) types.ScoreReport {
	factorScores := map[string]float64{
		FactorSentiment:   scoreSentiment(in.SentimentTimeline),
		FactorEngagement:  scoreEngagement(in.TalkRatio, in.SentimentTimeline),
		FactorObjections:  scoreObjectionResolution(in.Objections),
		FactorNextSteps:   scoreNextSteps(in.NextActions),
		FactorBudget:      scoreBudgetTimeline(in.BudgetMentions, in.TimelineUrgency),
		FactorDecisionMkr: scoreDecisionMaker(in.DecisionMakers, in.Entities),
	}

	total := 0.0
	for _, f := range factors {
		total += factorScores[f.name] * f.weight
	}
	total = clamp(total, 0, 100)

	return types.ScoreReport{
		DealScore:       math.Round(total*10) / 10,
		RiskLevel:       RiskLevel(total),
		FactorScores:    factorScores,
		Insights:        buildInsights(factorScores, total),
		Recommendations: buildRecommendations(factorScores, total),
	}
}

// scoreSentiment maps the mean ternary sentiment from [-1,1] onto [0,100],
// with a +10 bonus for consistently positive calls.
func scoreSentiment(timeline []types.SentimentPoint) float64 {
	if len(timeline) == 0 {
		return 50.0
	}

	total := 0.0
	positive := 0
	for _, p := range timeline {
		total += p.SentimentScore
		if p.SentimentScore > 0.3 {
			positive++
		}
	}
	avg := total / float64(len(timeline))
	score := (avg + 1) * 50

	if float64(positive)/float64(len(timeline)) > 0.7 {
		score = math.Min(100, score+10)
	}
	return score
}

// scoreEngagement bands the prospect talk percentage (40-60% is ideal) and
// adds up to 20 points for mean engagement level.
func scoreEngagement(ratio types.TalkRatio, timeline []types.SentimentPoint) float64 {
	prospect := ratio.ProspectPercentage

	var base float64
	switch {
	case prospect >= 40 && prospect <= 60:
		base = 100
	case (prospect >= 30 && prospect < 40) || (prospect > 60 && prospect <= 70):
		base = 80
	case (prospect >= 20 && prospect < 30) || (prospect > 70 && prospect <= 80):
		base = 60
	default:
		base = 40
	}

	if len(timeline) > 0 {
		total := 0.0
		for _, p := range timeline {
			total += p.EngagementLevel
		}
		avg := total / float64(len(timeline))
		base = math.Min(100, base+avg*20)
	}
	return base
}

func scoreObjectionResolution(objections []types.Objection) float64 {
	if len(objections) == 0 {
		return 85.0
	}

	base := math.Max(40, 100-float64(len(objections))*10)

	addressed := 0
	late := false
	for _, obj := range objections {
		if obj.RecommendedResponse != "" {
			addressed++
		}
		if obj.Timestamp > 0.8 {
			late = true
		}
	}
	if addressed > 0 {
		rate := float64(addressed) / float64(len(objections))
		base = math.Min(100, base+rate*30)
	}
	if late {
		base -= 15
	}
	return math.Max(0, base)
}

func scoreNextSteps(actions []types.NextAction) float64 {
	if len(actions) == 0 {
		return 20.0
	}

	base := math.Min(100, float64(len(actions))*20)

	specific := 0
	for _, a := range actions {
		if a.Priority > 0 && a.Action != "" {
			specific++
		}
	}
	if specific > 0 {
		bonus := float64(specific) / float64(len(actions)) * 20
		base = math.Min(100, base+bonus)
	}
	return base
}

// scoreBudgetTimeline tiers budget and timeline mentions independently at
// 50/75/100 by specificity and confirmation, each worth half the factor.
func scoreBudgetTimeline(budgetMentions, timelineUrgency []string) float64 {
	score := 0.0

	if len(budgetMentions) > 0 {
		budget := 50.0
		for _, m := range budgetMentions {
			if strings.Contains(m, "$") || strings.Contains(strings.ToLower(m), "k") {
				budget = 75.0
				break
			}
		}
		joined := strings.ToLower(strings.Join(budgetMentions, " "))
		for _, w := range []string{"approved", "confirmed", "available"} {
			if strings.Contains(joined, w) {
				budget = 100.0
				break
			}
		}
		score += budget * 0.5
	}

	if len(timelineUrgency) > 0 {
		timeline := 50.0
		for _, m := range timelineUrgency {
			if isAllDigits(m) {
				timeline = 75.0
				break
			}
		}
		joined := strings.ToLower(strings.Join(timelineUrgency, " "))
		for _, w := range []string{"urgent", "asap", "immediately", "this week"} {
			if strings.Contains(joined, w) {
				timeline = 100.0
				break
			}
		}
		score += timeline * 0.5
	}

	return score
}

func scoreDecisionMaker(decisionMakers []string, entities types.ExtractedEntities) float64 {
	if len(decisionMakers) == 0 {
		return 30.0
	}

	base := math.Min(100, float64(len(decisionMakers))*30)
	if !entities.Empty() {
		base = math.Min(100, base+20)
	}
	return base
}

// RiskLevel bands a composite score: >=80 low, >=60 medium, >=40 high,
// else critical.
func RiskLevel(score float64) string {
	switch {
	case score >= 80:
		return "low"
	case score >= 60:
		return "medium"
	case score >= 40:
		return "high"
	default:
		return "critical"
	}
}

func buildInsights(factorScores map[string]float64, total float64) []string {
	strongest := factors[0].name
	weakest := factors[0].name
	for _, f := range factors[1:] {
		if factorScores[f.name] > factorScores[strongest] {
			strongest = f.name
		}
		if factorScores[f.name] < factorScores[weakest] {
			weakest = f.name
		}
	}

	insights := []string{
		fmt.Sprintf("Strongest area: %s (%.1f/100)", prettyFactor(strongest), factorScores[strongest]),
	}
	if factorScores[weakest] < 60 {
		insights = append(insights,
			fmt.Sprintf("Needs improvement: %s (%.1f/100)", prettyFactor(weakest), factorScores[weakest]))
	}

	switch {
	case total >= 80:
		insights = append(insights, "Excellent deal health - high probability of closing")
	case total >= 60:
		insights = append(insights, "Good deal health - positive indicators with some areas to address")
	case total >= 40:
		insights = append(insights, "Moderate deal health - requires attention and follow-up")
	default:
		insights = append(insights, "Low deal health - significant risks and obstacles identified")
	}
	return insights
}

func buildRecommendations(factorScores map[string]float64, total float64) []string {
	var recs []string
	for _, f := range factors {
		if factorScores[f.name] < 60 {
			recs = append(recs, recommendations[f.name])
		}
	}
	if total < 40 {
		recs = append(recs, "Consider if this deal is worth pursuing - major red flags present")
	}
	return recs
}

func prettyFactor(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
