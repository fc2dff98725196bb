package learning

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"
)

const patternIDRunes = 20

var (
	whitespace       = regexp.MustCompile(`\s+`)
	contextDate      = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4}|\d{1,2}-\d{1,2}-\d{4}|tomorrow|today|next week)`)
	contextNumber    = regexp.MustCompile(`\b\d+\b`)
	contextEmail     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	minConfidence    = 0.1
	maxConfidence    = 1.0
	positiveFeedback = 0.1
	negativeFeedback = 0.2
)

// patternID keys a pattern by intent and the first runes of the raw input.
func patternID(input string, intent model.IntentName) string {
	id := whitespace.ReplaceAllString(nlu.Normalize(input), "_")
	if r := []rune(id); len(r) > patternIDRunes {
		id = string(r[:patternIDRunes])
	}
	return string(intent) + "_" + id
}

// patternText lower-cases, strips punctuation and collapses whitespace.
func patternText(input string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, nlu.Normalize(input))
	return strings.TrimSpace(whitespace.ReplaceAllString(stripped, " "))
}

func patternContext(input string) map[string]bool {
	ctx := map[string]bool{}
	if contextDate.MatchString(input) {
		ctx["hasDate"] = true
	}
	if contextNumber.MatchString(input) {
		ctx["hasNumbers"] = true
	}
	if contextEmail.MatchString(input) {
		ctx["hasEmail"] = true
	}
	return ctx
}

// adjustConfidence averages the old and new scores, then applies feedback.
func adjustConfidence(current, observed float64, feedback model.Feedback) float64 {
	adjusted := (current + observed) / 2
	switch feedback {
	case model.FeedbackPositive:
		adjusted += positiveFeedback
	case model.FeedbackNegative:
		adjusted -= negativeFeedback
	}
	return clamp(adjusted)
}

func clamp(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}

// evict drops least recently used patterns until the table fits capacity.
// Ties on lastUsed go to the lower frequency.
func evict(patterns map[string]*model.LearningPattern, capacity int) []string {
	over := len(patterns) - capacity
	if over <= 0 {
		return nil
	}
	ids := make([]string, 0, len(patterns))
	for id := range patterns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := patterns[ids[i]], patterns[ids[j]]
		if !a.LastUsed.Equal(b.LastUsed) {
			return a.LastUsed.Before(b.LastUsed)
		}
		if a.Frequency != b.Frequency {
			return a.Frequency < b.Frequency
		}
		return ids[i] < ids[j]
	})
	evicted := ids[:over]
	for _, id := range evicted {
		delete(patterns, id)
	}
	return evicted
}

// byFrequency orders patterns by frequency, then recency, then text.
func byFrequency(patterns []*model.LearningPattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if !a.LastUsed.Equal(b.LastUsed) {
			return a.LastUsed.After(b.LastUsed)
		}
		return a.Pattern < b.Pattern
	})
}

func timeOfDay(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
