package nlu

import (
	"hotel_concierge/src/model"
)

// Matcher classifies utterances against the ordered intent table.
type Matcher struct {
	table     *Table
	extractor *Extractor
}

func NewMatcher(table *Table) *Matcher {
	if table == nil {
		table = DefaultTable()
	}
	return &Matcher{table: table, extractor: NewExtractor(table)}
}

func (m *Matcher) Table() *Table { return m.table }

func (m *Matcher) Extractor() *Extractor { return m.extractor }

// Classify returns the first intent whose keywords occur in the utterance,
// with its fixed confidence, entities, sentiment and urgency. Deterministic:
// the same text always yields the same Intent.
func (m *Matcher) Classify(text string, lang model.Language) model.Intent {
	normalized := Normalize(text)
	rule := m.match(normalized)
	padded := phraseText(normalized)

	return model.Intent{
		Primary:    rule.Name,
		Confidence: rule.Confidence,
		Entities:   m.extractor.Extract(text, rule.Name),
		Sentiment:  m.sentiment(padded),
		Urgency:    m.urgency(padded),
		Language:   lang,
	}
}

func (m *Matcher) match(normalized string) IntentRule {
	if normalized == "" {
		return m.table.Fallback
	}
	for _, rule := range m.table.Intents {
		if anySubstring(normalized, rule.Keywords) {
			return rule
		}
	}
	return m.table.Fallback
}

// sentiment nets positive hits against negative hits.
func (m *Matcher) sentiment(padded string) model.Sentiment {
	score := countPhrases(padded, m.table.Sentiment.Positive) - countPhrases(padded, m.table.Sentiment.Negative)
	switch {
	case score > 0:
		return model.SentimentPositive
	case score < 0:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func (m *Matcher) urgency(padded string) model.Urgency {
	switch {
	case anyPhrase(padded, m.table.Urgency.High):
		return model.UrgencyHigh
	case anyPhrase(padded, m.table.Urgency.Medium):
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}
