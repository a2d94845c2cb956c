package wordlist

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns the word filter for lang. English keeps lowercase
// ASCII words; other languages keep words made only of letters.
func FilterForLang(lang string) FilterFunc {
	if strings.EqualFold(lang, BuiltinLang) {
		return isLowerASCII
	}
	return isLetters
}

// Clean trims words, drops the ones rejected by the language filter and
// removes duplicates, keeping first occurrences in order.
func Clean(words []string, lang string) []string {
	keep := FilterForLang(lang)
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if _, dup := seen[w]; dup || !keep(w) {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func isLowerASCII(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isLetters(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
