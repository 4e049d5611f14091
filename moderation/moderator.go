// Package moderation masks censored words in stored chat history.
// Live frames are rendered as sent; only the persisted record is masked,
// so replays stay clean even when clients predate a wordlist update.
package moderation

import (
	_ "embed"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed censored.txt
var defaultWordlist string

// DefaultWords returns the embedded wordlist, one word per line,
// blank lines and #-comments skipped.
func DefaultWords() []string {
	var words []string
	for _, line := range strings.Split(defaultWordlist, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}

// Moderator finds censored words with an Aho-Corasick automaton over a
// normalized (lowercased, punctuation- and space-stripped) view of the
// text and masks the matching runes in the original.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

func NewModerator(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		normalized, _ := normalize(w)
		patterns[i] = normalized
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, mask: mask}, nil
}

// Censor replaces every matched span with the mask rune, preserving the
// spacing and punctuation of the original text.
func (m *Moderator) Censor(original string) string {
	normalized, origIdx := normalize(original)
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	runes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = m.mask
		}
	}
	return string(runes)
}

// normalize lowercases and drops punctuation, symbols and spaces while
// recording where each kept rune sat in the original.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	normalized := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}
