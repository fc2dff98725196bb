package learning

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"

	"gopkg.in/yaml.v3"
)

const maxSuggestions = 5

//go:embed completions.yaml
var defaultCompletionData []byte

type completion struct {
	Prefix      string   `yaml:"prefix"`
	Completions []string `yaml:"completions"`
}

type completionTable map[model.Language][]completion

func defaultCompletions() completionTable {
	var table completionTable
	if err := yaml.Unmarshal(defaultCompletionData, &table); err != nil {
		panic(fmt.Sprintf("learning: embedded completions: %v", err))
	}
	return table
}

// lookup returns the completions of the first entry whose prefix starts
// with input.
func (t completionTable) lookup(input string, lang model.Language) []string {
	for _, c := range t[lang] {
		if strings.HasPrefix(patternText(c.Prefix), input) {
			return c.Completions
		}
	}
	return nil
}

// Suggestions autocompletes prefix from learned patterns in lang, most
// frequent first, followed by the common completions. The result holds no
// duplicates and at most five entries. The prefix is folded like stored
// patterns, so punctuation is ignored.
func (s *Store) Suggestions(prefix string, lang model.Language) []string {
	input := patternText(prefix)
	if utf8.RuneCountInString(input) < 2 {
		return []string{}
	}

	s.mu.Lock()
	var matching []*model.LearningPattern
	for _, p := range s.profile.Patterns {
		if p.Language == lang && strings.Contains(p.Pattern, input) {
			cp := *p
			matching = append(matching, &cp)
		}
	}
	s.mu.Unlock()

	byFrequency(matching)
	if len(matching) > maxSuggestions {
		matching = matching[:maxSuggestions]
	}

	candidates := make([]string, 0, len(matching)+3)
	for _, p := range matching {
		candidates = append(candidates, reconstruct(p.Pattern, input))
	}
	candidates = append(candidates, s.completions.lookup(input, lang)...)
	return dedupe(candidates, maxSuggestions)
}

// reconstruct returns the pattern from the word where input starts.
func reconstruct(pattern, input string) string {
	words := strings.Split(pattern, " ")
	inputWords := strings.Fields(input)
	want := strings.Join(inputWords, " ")
	for i := 0; i+len(inputWords) <= len(words); i++ {
		if strings.HasPrefix(strings.Join(words[i:i+len(inputWords)], " "), want) {
			return strings.Join(words[i:], " ")
		}
	}
	return pattern
}

func dedupe(candidates []string, limit int) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, limit)
	for _, c := range candidates {
		key := nlu.Normalize(c)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// PredictIntent returns the learned pattern in lang that starts with partial
// and scores best on confidence times frequency, among those above 0.7.
func (s *Store) PredictIntent(partial string, lang model.Language) (model.LearningPattern, bool) {
	input := patternText(partial)
	if input == "" {
		return model.LearningPattern{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var best *model.LearningPattern
	for _, p := range s.profile.Patterns {
		if p.Language != lang || p.Confidence <= 0.7 || !strings.HasPrefix(p.Pattern, input) {
			continue
		}
		if best == nil || score(p) > score(best) || (score(p) == score(best) && p.Pattern < best.Pattern) {
			best = p
		}
	}
	if best == nil {
		return model.LearningPattern{}, false
	}
	return *best, true
}

func score(p *model.LearningPattern) float64 {
	return p.Confidence * float64(p.Frequency)
}

// TopPatterns returns up to n learned pattern texts above minConfidence,
// most frequent first.
func (s *Store) TopPatterns(minConfidence float64, n int) []string {
	s.mu.Lock()
	var matching []*model.LearningPattern
	for _, p := range s.profile.Patterns {
		if p.Confidence > minConfidence {
			cp := *p
			matching = append(matching, &cp)
		}
	}
	s.mu.Unlock()

	byFrequency(matching)
	out := make([]string, 0, n)
	for _, p := range matching {
		if len(out) == n {
			break
		}
		out = append(out, p.Pattern)
	}
	return out
}
