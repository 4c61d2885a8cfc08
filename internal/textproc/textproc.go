// Package textproc normalises raw text into the canonical term stream used by
// both indexing and ranking. The two sides must tokenize identically or index
// lookups and TF counts drift apart, so this is the only tokenizer in the
// codebase.
package textproc

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are high-frequency, low-information words excluded from indexing
// and scoring. The set is fixed; there is no external configuration.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "will": {}, "with": {},
	"this": {}, "but": {}, "they": {}, "have": {}, "had": {},
	"what": {}, "when": {}, "where": {}, "who": {}, "which": {},
	"why": {}, "how": {},
}

// Tokenize lowercases text and splits it into maximal runs of word characters
// (letters, digits, underscore). Everything else is a delimiter and is
// discarded. Duplicates are preserved; term frequency matters downstream.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// RemoveStopwords filters tokens against the fixed stopword set.
func RemoveStopwords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := stopwords[token]; isStop {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

// Process is the canonical pipeline: tokenize, then drop stopwords.
func Process(text string) []string {
	return RemoveStopwords(Tokenize(text))
}

// WeightedText builds the text that indexing and scoring both operate on.
// The title appears twice so title terms count double in term frequency;
// index and ranker must agree on this weighting.
func WeightedText(title, content string) string {
	return title + " " + title + " " + content
}

// UniqueTerms returns the distinct terms of Process(text), sorted for
// deterministic iteration.
func UniqueTerms(text string) []string {
	tokens := Process(text)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	sort.Strings(terms)
	return terms
}
