package objection

import (
	"fmt"
	"regexp"
	"strings"

	"call-insights-go/internal/types"
)

// pattern is one objection category: ordered keyword set plus the canned
// response surfaced to the rep.
type pattern struct {
	category            string
	keywords            []*regexp.Regexp
	recommendedResponse string
}

// patterns are tested in declared order; the first category whose keyword
// set matches a line wins, so a line never yields more than one objection.
var patterns = []pattern{
	{
		category:            "price",
		keywords:            compileKeywords("expensive", "too much", "cost", "price", "budget", "can't afford", "cheaper"),
		recommendedResponse: "Focus on ROI and value proposition. Offer payment plans or show cost savings.",
	},
	{
		category:            "timing",
		keywords:            compileKeywords("too busy", "not now", "later", "wrong time", "wait", "not ready", "next quarter"),
		recommendedResponse: "Create urgency by highlighting current opportunities or risks of delay.",
	},
	{
		category:            "authority",
		keywords:            compileKeywords("need to check", "my boss", "manager", "committee", "not my decision", "approval"),
		recommendedResponse: "Identify decision makers and provide materials for internal selling.",
	},
	{
		category:            "need",
		keywords:            compileKeywords("don't need", "not interested", "happy with", "working fine", "no problem"),
		recommendedResponse: "Uncover pain points and demonstrate clear value proposition.",
	},
	{
		category:            "competition",
		keywords:            compileKeywords("competitor", "alternative", "other option", "x company", "already using"),
		recommendedResponse: "Differentiate on unique value and competitive advantages.",
	},
	{
		category:            "trust",
		keywords:            compileKeywords("not sure", "uncertain", "risky", "guarantee", "proof", "evidence"),
		recommendedResponse: "Provide case studies, testimonials, and risk-free trials.",
	},
	{
		category:            "implementation",
		keywords:            compileKeywords("complicated", "difficult", "time consuming", "resources", "integration"),
		recommendedResponse: "Simplify onboarding process and highlight support resources.",
	},
}

const fallbackResponse = "Listen carefully and address the specific concern raised."

// compileKeywords builds word-bounded matchers so "pricing" does not trip
// the "price" keyword.
func compileKeywords(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

// Detector scans transcript lines against the fixed category table. It is
// stateless and safe for concurrent use.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// Detect returns objections in line order. Timestamp is line position over
// the total line count (blank lines included in the denominator).
func (d *Detector) Detect(transcript string) []types.Objection {
	lines := strings.Split(transcript, "\n")
	totalLines := len(lines)

	var objections []types.Objection
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		timestamp := float64(i) / float64(totalLines)

		for _, p := range patterns {
			if matchesAny(line, p.keywords) {
				objections = append(objections, types.Objection{
					Text:                line,
					Timestamp:           timestamp,
					Category:            p.category,
					RecommendedResponse: p.recommendedResponse,
				})
				break
			}
		}
	}
	return objections
}

// Categorize maps a single utterance to a category and its canned response,
// or ("other", generic response) when nothing matches.
func (d *Detector) Categorize(text string) (string, string) {
	for _, p := range patterns {
		if matchesAny(text, p.keywords) {
			return p.category, p.recommendedResponse
		}
	}
	return "other", fallbackResponse
}

func matchesAny(text string, keywords []*regexp.Regexp) bool {
	for _, kw := range keywords {
		if kw.MatchString(text) {
			return true
		}
	}
	return false
}

// Statistics summarizes detected objections. The objection rate is measured
// against a fixed 10-minute call baseline regardless of actual duration.
func (d *Detector) Statistics(objections []types.Objection) types.ObjectionStats {
	if len(objections) == 0 {
		return types.ObjectionStats{Categories: map[string]int{}}
	}

	counts := map[string]int{}
	for _, obj := range objections {
		counts[obj.Category]++
	}

	mostCommon := ""
	best := 0
	for _, p := range patterns {
		if c := counts[p.category]; c > best {
			best = c
			mostCommon = p.category
		}
	}

	return types.ObjectionStats{
		TotalObjections: len(objections),
		Categories:      counts,
		MostCommon:      mostCommon,
		ObjectionRate:   float64(len(objections)) / 10.0,
	}
}

// hedgingMarkers flag objections that were likely left unresolved.
var hedgingMarkers = []string{"but", "however", "still", "even though"}

// CoachingInsights derives rep guidance from the objection pattern of one
// call: repeated categories, late-stage objections and hedging language.
func (d *Detector) CoachingInsights(objections []types.Objection) []string {
	if len(objections) == 0 {
		return []string{"No objections detected - consider if you're adequately addressing concerns."}
	}

	var insights []string

	counts := map[string]int{}
	for _, obj := range objections {
		counts[obj.Category]++
	}
	for _, p := range patterns {
		if counts[p.category] >= 2 {
			insights = append(insights, fmt.Sprintf(
				"Multiple %s objections detected - consider addressing this proactively earlier in the call.", p.category))
		}
	}

	for _, obj := range objections {
		if obj.Timestamp > 0.8 {
			insights = append(insights, "Late-stage objections suggest need for better qualification early in the call.")
			break
		}
	}

	for _, obj := range objections {
		lower := strings.ToLower(obj.Text)
		for _, marker := range hedgingMarkers {
			if strings.Contains(lower, marker) {
				insights = append(insights, "Potential unresolved objection detected - ensure adequate response and confirmation.")
				break
			}
		}
	}

	return insights
}
