package search

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"
)

// Similarity is the character-overlap heuristic used for fuzzy term
// expansion: for each character of a, count a match if it occurs anywhere in
// b, then divide by the longer length. It is NOT an edit distance: there is
// no positional alignment, and a character repeated in a is counted once per
// occurrence no matter how often it appears in b. The ranking and expansion
// behavior of the whole engine depends on this exact shape; do not swap in
// Levenshtein without revisiting the expansion threshold.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	if lenA == 0 || lenB == 0 {
		return 0.0
	}
	matches := 0
	for _, r := range a {
		if strings.ContainsRune(b, r) {
			matches++
		}
	}
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	return float64(matches) / float64(maxLen)
}

// Expander widens query terms with vocabulary terms above a similarity
// threshold, tolerating misspelled queries.
//
// A naive expansion compares every query term against every vocabulary term.
// To bound that scan, the vocabulary is bucketed by term length and only
// buckets a candidate could pass from are visited: Similarity(a, b) is at
// most len(a)/max(len(a), len(b)), so any b longer than len(a)/threshold can
// never reach the threshold. The prefilter is exact; it skips only terms
// that could not match. MaxScan additionally caps the total comparisons per
// query as a safety valve on very large vocabularies.
type Expander struct {
	Threshold float64
	MaxScan   int
	logger    *slog.Logger
}

func NewExpander(threshold float64, maxScan int) *Expander {
	return &Expander{
		Threshold: threshold,
		MaxScan:   maxScan,
		logger:    slog.Default().With("component", "fuzzy-expander"),
	}
}

// Expand returns the union of queryTerms and all vocabulary terms whose
// similarity to any query term meets the threshold, deduplicated and sorted.
func (e *Expander) Expand(queryTerms, vocabulary []string) []string {
	expanded := make(map[string]struct{}, len(queryTerms))
	for _, term := range queryTerms {
		expanded[term] = struct{}{}
	}

	buckets := bucketByLength(vocabulary)
	scanned := 0
	capped := false

scan:
	for _, queryTerm := range queryTerms {
		maxCandidateLen := int(float64(utf8.RuneCountInString(queryTerm)) / e.Threshold)
		for length := 1; length <= maxCandidateLen; length++ {
			for _, indexTerm := range buckets[length] {
				if e.MaxScan > 0 && scanned >= e.MaxScan {
					capped = true
					break scan
				}
				scanned++
				if _, ok := expanded[indexTerm]; ok {
					continue
				}
				if Similarity(queryTerm, indexTerm) >= e.Threshold {
					expanded[indexTerm] = struct{}{}
				}
			}
		}
	}
	if capped {
		e.logger.Warn("fuzzy expansion scan capped", "max_scan", e.MaxScan, "query_terms", len(queryTerms))
	}

	result := make([]string, 0, len(expanded))
	for term := range expanded {
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

func bucketByLength(vocabulary []string) map[int][]string {
	buckets := make(map[int][]string)
	for _, term := range vocabulary {
		length := utf8.RuneCountInString(term)
		buckets[length] = append(buckets[length], term)
	}
	return buckets
}
