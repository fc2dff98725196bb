package composer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isTerminal reports sentence-final punctuation, including the Arabic
// question mark and the Devanagari danda.
func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '।':
		return true
	}
	return false
}

// span is a half-open byte range of one sentence, before trimming.
type span struct{ start, end int }

// spans finds sentence boundaries. A sentence ends at a run of terminal
// marks followed by whitespace or the end of text, so "3.5" stays whole.
func spans(text string) []span {
	var out []span
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}
		end := i + size
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(next) {
				break
			}
			end += n
		}
		if end < len(text) {
			if next, _ := utf8.DecodeRuneInString(text[end:]); !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		if strings.TrimSpace(text[start:end]) != "" {
			out = append(out, span{start, end})
		}
		start, i = end, end
	}
	if strings.TrimSpace(text[start:]) != "" {
		out = append(out, span{start, len(text)})
	}
	return out
}

// Sentences splits text into trimmed sentences, each a slice of text.
func Sentences(text string) []string {
	found := spans(text)
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = strings.TrimSpace(text[s.start:s.end])
	}
	return out
}

// terminate appends a full stop to a sentence that lacks a terminal mark.
func terminate(s string) string {
	if s == "" {
		return s
	}
	if r, _ := utf8.DecodeLastRuneInString(s); isTerminal(r) {
		return s
	}
	return s + "."
}

// Cap keeps at most limit sentences of text, cut at a sentence boundary of
// the original. A limit below one keeps everything.
func Cap(text string, limit int) string {
	text = strings.TrimSpace(text)
	found := spans(text)
	if len(found) == 0 {
		return ""
	}
	if limit > 0 && len(found) > limit {
		text = strings.TrimSpace(text[:found[limit-1].end])
	}
	return terminate(text)
}
