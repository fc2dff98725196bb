package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"hotel_concierge/src/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Dates are captured raw, without calendar validation.
var (
	datePattern     = regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	guestsPattern   = regexp.MustCompile(`(?i)(\d+)\s*(guest|people|person|ضيف|أشخاص)`)
	capacityPattern = regexp.MustCompile(`(?i)(\d+)\s*(people|person|guests|attendees|أشخاص|حضور)`)
	namePattern     = regexp.MustCompile(`(?i)\b(?:my name is|i'm|i’m|i am|call me)\s+([a-z]+)`)
)

// Extractor pulls structured fields out of an utterance. Each probe runs
// independently; unmatched fields are absent from the result.
type Extractor struct {
	table *Table
}

func NewExtractor(table *Table) *Extractor {
	if table == nil {
		table = DefaultTable()
	}
	return &Extractor{table: table}
}

// Extract runs the probes registered for the intent's entity category plus
// the category-independent name and decision probes.
func (x *Extractor) Extract(text string, intent model.IntentName) model.Entities {
	entities := model.Entities{}
	raw := norm.NFC.String(text)
	normalized := Normalize(text)

	category := x.table.Rule(intent).Category
	switch category {
	case "room":
		extractDates(raw, entities)
		if n, ok := firstCount(guestsPattern, raw); ok {
			entities[model.EntityGuests] = n
		}
	case "meeting":
		if n, ok := firstCount(capacityPattern, raw); ok {
			entities[model.EntityCapacity] = n
		}
	}

	for _, probe := range x.table.Probes[category] {
		if anySubstring(normalized, probe.Keywords) {
			entities[probe.Field] = probe.Value
		}
	}

	if name, ok := x.name(raw); ok {
		entities[model.EntityName] = name
	}
	if decision, ok := x.Decision(text); ok {
		entities[model.EntityDecision] = decision
	}
	return entities
}

// Decision reads a yes/no/cancel answer. Negation idioms ("no problem")
// are dropped first, then cancel beats decline beats affirm.
func (x *Extractor) Decision(text string) (string, bool) {
	padded := removePhrases(phraseText(Normalize(text)), x.table.Decisions.Idioms)
	switch {
	case anyPhrase(padded, x.table.Decisions.Cancel):
		return model.DecisionCancel, true
	case anyPhrase(padded, x.table.Decisions.Decline):
		return model.DecisionDecline, true
	case anyPhrase(padded, x.table.Decisions.Affirm):
		return model.DecisionAffirm, true
	default:
		return "", false
	}
}

func extractDates(raw string, entities model.Entities) {
	dates := datePattern.FindAllString(raw, 2)
	if len(dates) > 0 {
		entities[model.EntityCheckIn] = dates[0]
	}
	if len(dates) > 1 {
		entities[model.EntityCheckOut] = dates[1]
	}
}

func firstCount(pattern *regexp.Regexp, raw string) (int, bool) {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// name takes the first candidate that is not a filler word ("I'm looking ...").
func (x *Extractor) name(raw string) (string, bool) {
	for _, m := range namePattern.FindAllStringSubmatch(raw, -1) {
		candidate := strings.ToLower(m[1])
		if _, stop := x.table.stopwords[candidate]; stop {
			continue
		}
		return cases.Title(language.Und).String(candidate), true
	}
	return "", false
}
