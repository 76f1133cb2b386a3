package matching

import "strings"

// Classify maps free text to at most one category tag.
// Categories and their keywords are tried in dictionary order; the first keyword
// found as a substring of the lower-cased text decides the category.
func (d *Dictionary) Classify(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range d.Categories {
		if containsAny(lower, c.Keywords) {
			return c.Tag, true
		}
	}
	return "", false
}
