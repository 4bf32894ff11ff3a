package intent

import (
	"fmt"
	"regexp"
	"strings"

	"call-insights-go/internal/types"
)

// Intent labels, in scoring precedence order.
const (
	ReadyToBuy  = "ready_to_buy"
	Comparing   = "comparing"
	Researching = "researching"
	Stalled     = "stalled"
)

// signal is one intent's scoring configuration.
type signal struct {
	intent      string
	keywords    []string
	patterns    []*regexp.Regexp
	weight      float64
	description string
}

// signals are scanned in declared order; a tie on the top score resolves to
// the earlier entry.
var signals = []signal{
	{
		intent:      ReadyToBuy,
		keywords:    []string{"buy", "purchase", "sign", "contract", "agree", "ready", "let's do it", "when can we start"},
		weight:      1.0,
		description: "Strong buying signals and commitment language",
	},
	{
		intent:      Comparing,
		keywords:    []string{"compare", "versus", "vs", "alternative", "competitor", "other options", "difference between"},
		weight:      0.7,
		description: "Active comparison with alternatives",
	},
	{
		intent:      Researching,
		keywords:    []string{"information", "details", "how does", "what is", "explain", "demo", "show me", "learn more"},
		weight:      0.5,
		description: "Information gathering and exploration",
	},
	{
		intent:      Stalled,
		keywords:    []string{"think about it", "maybe later", "not sure", "need time", "let me get back", "hold off"},
		weight:      0.3,
		description: "Delay tactics and uncertainty",
	},
}

// negativeIndicators reduce an intent's score by 0.5 per matched phrase.
var negativeIndicators = map[string][]string{
	ReadyToBuy:  {"not ready", "too early", "just looking", "no budget"},
	Comparing:   {"only you", "no other options", "already decided"},
	Researching: {"already know", "familiar with", "understand"},
	Stalled:     {"definitely interested", "sure", "absolutely"},
}

var (
	implementationCues = []string{"implementation", "onboarding", "start", "go live"}
	competitorCues     = []string{"salesforce", "hubspot", "zoho", "pipedrive"}
	indefiniteCues     = []string{"someday", "eventually", "down the road"}
)

func init() {
	for i := range signals {
		for _, kw := range signals[i].keywords {
			signals[i].patterns = append(signals[i].patterns,
				regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
}

// Classifier scores buyer intent from transcript text. Pattern tables are
// immutable, so one Classifier serves concurrent calls.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify returns the primary buyer intent with confidence, per-intent
// scores and a deterministic reasoning string. The talk ratio, when known,
// scales scores by prospect engagement.
func (c *Classifier) Classify(transcript string, talkRatio *types.TalkRatio) types.IntentResult {
	lower := strings.ToLower(transcript)

	scores := make(map[string]float64, len(signals))
	primary := signals[0].intent
	best := -1.0
	maxScore := 0.0

	for _, sig := range signals {
		score := c.keywordScore(lower, sig) + bonusScore(lower, sig.intent)
		score -= negativeScore(lower, sig.intent)
		if score < 0 {
			score = 0
		}
		if talkRatio != nil {
			score = adjustByTalkRatio(score, sig.intent, *talkRatio)
		}
		scores[sig.intent] = score

		if score > best {
			best = score
			primary = sig.intent
		}
		if score > maxScore {
			maxScore = score
		}
	}

	confidence := 0.0
	if maxScore > 0 {
		confidence = scores[primary] / maxScore
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return types.IntentResult{
		PrimaryIntent: primary,
		Confidence:    confidence,
		AllScores:     scores,
		Reasoning:     reasoning(primary, scores, lower),
	}
}

func (c *Classifier) keywordScore(text string, sig signal) float64 {
	score := 0.0
	for _, p := range sig.patterns {
		score += float64(len(p.FindAllStringIndex(text, -1))) * sig.weight
	}
	return score
}

// bonusScore applies intent-specific context heuristics.
func bonusScore(text, intent string) float64 {
	switch intent {
	case ReadyToBuy:
		if containsAny(text, implementationCues) {
			return 0.5
		}
	case Comparing:
		if containsAny(text, competitorCues) {
			return 0.3
		}
	case Stalled:
		if containsAny(text, indefiniteCues) {
			return 0.3
		}
	}
	return 0
}

func containsAny(text string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}

func negativeScore(text, intent string) float64 {
	score := 0.0
	for _, indicator := range negativeIndicators[intent] {
		if strings.Contains(text, indicator) {
			score += 0.5
		}
	}
	return score
}

func adjustByTalkRatio(score float64, intent string, ratio types.TalkRatio) float64 {
	prospect := ratio.ProspectPercentage

	if prospect > 60 {
		score *= 1.2
	} else if prospect < 30 {
		score *= 0.8
	}

	switch {
	case intent == ReadyToBuy && prospect > 50:
		score *= 1.3
	case intent == Stalled && prospect < 40:
		score *= 1.2
	}
	return score
}

func reasoning(primary string, scores map[string]float64, text string) string {
	var sig signal
	for _, s := range signals {
		if s.intent == primary {
			sig = s
			break
		}
	}

	parts := []string{fmt.Sprintf("Classified as %s based on %s.", primary, sig.description)}

	var found []string
	for _, kw := range sig.keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
			if len(found) == 3 {
				break
			}
		}
	}
	if len(found) > 0 {
		parts = append(parts, fmt.Sprintf("Detected keywords: %s", strings.Join(found, ", ")))
	}

	maxScore := 0.0
	for _, v := range scores {
		if v > maxScore {
			maxScore = v
		}
	}
	if maxScore > 0 {
		switch confidence := scores[primary] / maxScore; {
		case confidence >= 0.8:
			parts = append(parts, "High confidence - clear intent signals detected.")
		case confidence >= 0.5:
			parts = append(parts, "Moderate confidence - some mixed signals present.")
		default:
			parts = append(parts, "Low confidence - intent unclear or mixed.")
		}
	}

	return strings.Join(parts, " ")
}
