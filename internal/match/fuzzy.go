package match

import (
	"regexp"
	"strings"
)

// SimilarityThreshold is the acceptance percentage for edit-distance based
// skill-name lookups.
const SimilarityThreshold = 80.0

// partialMinLength guards substring matching against short tokens like "c"
// or "php" swallowing unrelated names.
const partialMinLength = 3

var nonTaxonomyChars = regexp.MustCompile(`[^a-z0-9+.#\s]`)

// Suffixes stripped during stemming, longest first so "-ments" wins over
// "-ment" and "-s".
var stemSuffixes = []string{
	"ments", "ions", "ists", "ers", "ors", "als",
	"ment", "ion", "ist", "ing", "er", "or", "al", "s",
}

// synonyms maps common short-hands onto their taxonomy names. Consulted
// before any stemmed comparison.
var synonyms = map[string]string{
	"js":       "javascript",
	"ts":       "typescript",
	"ai":       "machine learning",
	"ml":       "machine learning",
	"k8s":      "kubernetes",
	"golang":   "go",
	"node":     "node.js",
	"nodejs":   "node.js",
	"postgres": "postgresql",
	"db":       "database",
	"ui":       "user interface design",
	"ux":       "user experience design",
}

// PartialSkillMatch reports whether two skill names partially match via
// substring containment in either direction. Both names must be longer than
// three characters.
func PartialSkillMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if len(a) <= partialMinLength || len(b) <= partialMinLength {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

// NormalizeTaxonomy lower-cases, strips characters outside [a-z0-9+.#] and
// collapses whitespace.
func NormalizeTaxonomy(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonTaxonomyChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Stem strips one common suffix from the token, longest match first. The
// suffix is removed only when the remaining stem stays longer than the
// suffix itself, so "testing" becomes "test" but "sing" stays intact.
func Stem(token string) string {
	for _, suffix := range stemSuffixes {
		if !strings.HasSuffix(token, suffix) {
			continue
		}
		stem := strings.TrimSuffix(token, suffix)
		if len(stem) > len(suffix) {
			return stem
		}
	}
	return token
}

func stemTokens(s string) []string {
	fields := strings.Fields(NormalizeTaxonomy(s))
	stems := make([]string, 0, len(fields))
	for _, field := range fields {
		stems = append(stems, Stem(field))
	}
	return stems
}

// CategoriesEquivalent reconciles two category/taxonomy labels. The synonym
// table is consulted first; otherwise the labels are equivalent when their
// stemmed tokens match or the token overlap reaches min(2, total tokens).
func CategoriesEquivalent(a, b string) bool {
	a = expandSynonym(NormalizeTaxonomy(a))
	b = expandSynonym(NormalizeTaxonomy(b))

	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	stemsA := stemTokens(a)
	stemsB := stemTokens(b)

	overlap := 0
	seen := make(map[string]bool, len(stemsA))
	for _, stem := range stemsA {
		seen[stem] = true
	}
	for _, stem := range stemsB {
		if seen[stem] {
			overlap++
			// Count each shared stem once.
			delete(seen, stem)
		}
	}

	total := len(stemsA)
	if len(stemsB) < total {
		total = len(stemsB)
	}

	needed := 2
	if total < needed {
		needed = total
	}

	return needed > 0 && overlap >= needed
}

func expandSynonym(s string) string {
	if expanded, ok := synonyms[s]; ok {
		return expanded
	}
	return s
}

// Similarity returns an edit-distance based percentage between two strings,
// 100 meaning identical after normalization.
func Similarity(a, b string) float64 {
	a = NormalizeTaxonomy(a)
	b = NormalizeTaxonomy(b)

	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	distance := levenshtein(a, b)
	return (1 - float64(distance)/float64(maxLen)) * 100
}

// FuzzyEqual reports whether two skill names pass the similarity threshold.
func FuzzyEqual(a, b string) bool {
	return Similarity(a, b) >= SimilarityThreshold
}

// levenshtein computes edit distance with a single-row DP.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr := make([]int, len(b)+1)
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(curr[j-1]+1, minInt(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}

	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
