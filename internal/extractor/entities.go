package extractor

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"

	"call-insights-go/internal/types"
)

// EntityTagger is the entity-extraction capability. Two interchangeable
// strategies exist: a natural-language tagger (people, organizations, money,
// dates) and a regex fallback (money and dates only). The strategy is picked
// once when the Extractor is constructed.
type EntityTagger interface {
	Tag(text string) (types.ExtractedEntities, error)
}

var (
	moneyPattern = regexp.MustCompile(`(?i)\$\d+(?:,\d{3})*(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:dollars?|USD|k|k\s*USD)`)
	datePattern  = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2}(?:,\s*\d{4})?|\d{1,2}/\d{1,2}/\d{2,4}|\b(?:next|this)\s+(?:week|month|quarter)\b`)
)

// competitorKeywords is the fixed case-insensitive competitor list; matches
// are reported title-cased.
var competitorKeywords = []string{"salesforce", "hubspot", "zoho", "pipedrive", "freshworks"}

// proseTagger runs the prose NLP model for people and organizations and the
// shared regex patterns for money and dates.
type proseTagger struct{}

func newProseTagger() (*proseTagger, error) {
	// Probe once so tagger availability is decided at construction, not
	// per call.
	if _, err := prose.NewDocument("probe"); err != nil {
		return nil, err
	}
	return &proseTagger{}, nil
}

func (p *proseTagger) Tag(text string) (types.ExtractedEntities, error) {
	entities := types.ExtractedEntities{}
	if strings.TrimSpace(text) == "" {
		return entities, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return entities, err
	}
	for _, ent := range doc.Entities() {
		switch ent.Label {
		case "PERSON":
			entities.People = append(entities.People, ent.Text)
		case "ORG", "GPE":
			entities.Organizations = append(entities.Organizations, ent.Text)
		}
	}

	entities.Money = moneyPattern.FindAllString(text, -1)
	entities.Dates = datePattern.FindAllString(text, -1)
	return entities, nil
}

// regexTagger is the fallback strategy: money and dates only.
type regexTagger struct{}

func (r *regexTagger) Tag(text string) (types.ExtractedEntities, error) {
	return types.ExtractedEntities{
		Money: moneyPattern.FindAllString(text, -1),
		Dates: datePattern.FindAllString(text, -1),
	}, nil
}

func detectCompetitors(text string) []string {
	var found []string
	lower := strings.ToLower(text)
	for _, c := range competitorKeywords {
		if strings.Contains(lower, c) {
			found = append(found, titleCase(c))
		}
	}
	return found
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
