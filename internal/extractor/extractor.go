package extractor

import (
	"math"
	"regexp"
	"strings"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"

	"github.com/sirupsen/logrus"
)

// Extractor computes transcript features: entities, talk ratio, topics and
// the per-line sentiment timeline. It holds no mutable state after
// construction, so one Extractor may serve concurrent calls.
type Extractor struct {
	tagger EntityTagger
	log    *logrus.Entry
}

// New builds an Extractor with the natural-language tagger; if the tagger
// cannot be constructed it silently degrades to the regex fallback.
func New() *Extractor {
	log := logger.New().WithComponent("extractor")
	tagger, err := newProseTagger()
	if err != nil {
		log.WithError(err).Debug("nlp tagger unavailable, using regex fallback")
		return &Extractor{tagger: &regexTagger{}, log: log}
	}
	return &Extractor{tagger: tagger, log: log}
}

// NewWithTagger injects a specific tagging strategy.
func NewWithTagger(t EntityTagger) *Extractor {
	return &Extractor{tagger: t, log: logger.New().WithComponent("extractor")}
}

// ExtractEntities returns people, organizations, money mentions, dates and
// competitor mentions in detection order. A tagger failure on a single call
// degrades to the regex fallback for that call.
func (e *Extractor) ExtractEntities(text string) types.ExtractedEntities {
	entities, err := e.tagger.Tag(text)
	if err != nil {
		e.log.WithError(err).Debug("tagger failed, degrading to regex extraction")
		entities, _ = (&regexTagger{}).Tag(text)
	}
	entities.Competitors = detectCompetitors(text)
	return entities
}

// speakerLine matches an explicit "label: content" line.
var speakerLine = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*(.+)$`)

// repLabels mark a label as rep-side; any other label is the prospect.
var repLabels = []string{"rep", "sales", "agent"}

// CalculateTalkRatio attributes word counts by speaker label. Lines without
// a label attribute half their words to the prospect; that bias is kept as
// is because downstream engagement banding depends on it.
func (e *Extractor) CalculateTalkRatio(transcript string) types.TalkRatio {
	repWords := 0
	prospectWords := 0

	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := speakerLine.FindStringSubmatch(line); m != nil {
			speaker := strings.ToLower(m[1])
			count := len(strings.Fields(m[2]))
			if isRepLabel(speaker) {
				repWords += count
			} else {
				prospectWords += count
			}
		} else {
			prospectWords += len(strings.Fields(line)) / 2
		}
	}

	total := repWords + prospectWords
	if total == 0 {
		return types.TalkRatio{RepPercentage: 50.0, ProspectPercentage: 50.0, TotalWords: 0}
	}
	return types.TalkRatio{
		RepPercentage:      round1(float64(repWords) / float64(total) * 100),
		ProspectPercentage: round1(float64(prospectWords) / float64(total) * 100),
		TotalWords:         total,
	}
}

func isRepLabel(label string) bool {
	for _, r := range repLabels {
		if strings.Contains(label, r) {
			return true
		}
	}
	return false
}

// topicEntry keeps the taxonomy in declaration order.
type topicEntry struct {
	name     string
	keywords []string
}

var topicTaxonomy = []topicEntry{
	{"pricing", []string{"price", "cost", "pricing", "budget", "investment", "fee"}},
	{"features", []string{"feature", "functionality", "capability", "what can it do"}},
	{"implementation", []string{"implementation", "setup", "onboarding", "integration"}},
	{"timeline", []string{"timeline", "when", "start", "launch", "deadline"}},
	{"support", []string{"support", "help", "training", "customer service"}},
	{"competition", []string{"competitor", "alternative", "comparison", "other options"}},
	{"decision", []string{"decision", "approve", "buy", "purchase", "sign"}},
	{"technical", []string{"technical", "api", "integration", "security", "data"}},
}

// ExtractKeyTopics returns each taxonomy topic at most once, in taxonomy
// order, when any of its keywords appears as a substring.
func (e *Extractor) ExtractKeyTopics(transcript string) []string {
	lower := strings.ToLower(transcript)
	var topics []string
	for _, entry := range topicTaxonomy {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, entry.name)
				break
			}
		}
	}
	return topics
}

var (
	positiveWords = []string{"great", "excellent", "perfect", "love", "interested", "yes", "definitely", "absolutely"}
	negativeWords = []string{"concern", "issue", "problem", "expensive", "difficult", "no", "don't", "won't"}
)

// DetectSentimentTimeline emits one point per non-blank line. Sentiment is
// ternary: +0.5 when positive keywords outnumber negative ones, -0.5 when
// reversed, 0 otherwise. Engagement normalizes word count against 20.
func (e *Extractor) DetectSentimentTimeline(transcript string) []types.SentimentPoint {
	lines := strings.Split(transcript, "\n")
	totalLines := len(lines)

	var timeline []types.SentimentPoint
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		position := float64(i) / float64(totalLines)
		lower := strings.ToLower(line)

		positive := countPresent(lower, positiveWords)
		negative := countPresent(lower, negativeWords)

		sentiment := 0.0
		if positive > negative {
			sentiment = 0.5
		} else if negative > positive {
			sentiment = -0.5
		}

		engagement := math.Min(float64(len(strings.Fields(line)))/20.0, 1.0)

		timeline = append(timeline, types.SentimentPoint{
			Timestamp:       position,
			SentimentScore:  sentiment,
			EngagementLevel: engagement,
		})
	}
	return timeline
}

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
