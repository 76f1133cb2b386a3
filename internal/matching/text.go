package matching

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// wordPattern matches maximal runs of ASCII word characters.
var wordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// minTokenLength is the shortest token, in UTF-16 code units, that counts as a word.
const minTokenLength = 3

// tokenLength counts UTF-16 code units, so 日本 is 2 and an emoji outside the BMP is 2.
func tokenLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// TextRelevance returns the percentage (0-100) of query words longer than two characters
// that occur as substrings of the posting's title and description.
// Containment is substring based, so "dev" matches "developer".
func TextRelevance(query, title, description string) float64 {
	combined := strings.ToLower(title) + " " + strings.ToLower(description)
	words := queryWords(query)
	if len(words) == 0 {
		return 0
	}

	matches := 0
	for _, w := range words {
		if strings.Contains(combined, w) {
			matches++
		}
	}
	return float64(matches) / float64(len(words)) * 100
}

// queryWords tokenizes lower-cased text, keeping duplicates so repeated words weigh more.
func queryWords(text string) []string {
	all := wordPattern.FindAllString(strings.ToLower(text), -1)
	words := all[:0]
	for _, w := range all {
		if tokenLength(w) >= minTokenLength {
			words = append(words, w)
		}
	}
	return words
}
