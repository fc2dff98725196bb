package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds text to NFC lower case with surrounding space trimmed.
// Scripts without case (Arabic, Devanagari) pass through unchanged.
func Normalize(text string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(norm.NFC.String(text)))
}

// Words splits normalized text into word tokens. Combining marks stay
// attached so Devanagari words survive intact.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) && r != '\''
	})
}

// phraseText joins the words of normalized text with single spaces and pads
// both ends, ready for whole-word phrase lookups.
func phraseText(normalized string) string {
	return " " + strings.Join(Words(normalized), " ") + " "
}

// containsPhrase reports whether phrase occurs as whole words inside padded.
func containsPhrase(padded, phrase string) bool {
	words := Words(phrase)
	if len(words) == 0 {
		return false
	}
	return strings.Contains(padded, " "+strings.Join(words, " ")+" ")
}

// removePhrases blanks every whole-word occurrence of phrases in padded.
func removePhrases(padded string, phrases []string) string {
	for _, p := range phrases {
		words := Words(p)
		if len(words) == 0 {
			continue
		}
		padded = strings.ReplaceAll(padded, " "+strings.Join(words, " ")+" ", " ")
	}
	return padded
}

func anyPhrase(padded string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(padded, p) {
			return true
		}
	}
	return false
}

func countPhrases(padded string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if containsPhrase(padded, p) {
			n++
		}
	}
	return n
}

func anySubstring(normalized string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}
