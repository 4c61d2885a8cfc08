// Package ranking scores candidate documents against query terms with
// TF-IDF. All functions are pure computations over already-fetched data; the
// caller gathers corpus statistics before ranking.
package ranking

import (
	"math"
	"sort"

	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/internal/textproc"
)

// Stats carries the corpus-level statistics scoring needs: the total document
// count and, per query term, the number of documents containing it.
type Stats struct {
	TotalDocs int
	DocFreq   map[string]int
}

// ScoredDocument is a document with its relevance score attached. Transient:
// computed per query, never persisted.
type ScoredDocument struct {
	store.Document
	RelevanceScore float64 `json:"relevance_score"`
}

// TermFrequency computes the proportion of the document's token stream
// occupied by term. The document text is title-doubled exactly as at index
// time, so TF and the index agree on weighting. Returns 0 for a document
// with no tokens.
func TermFrequency(term string, doc store.Document) float64 {
	tokens := textproc.Process(textproc.WeightedText(doc.Title, doc.Content))
	if len(tokens) == 0 {
		return 0.0
	}
	count := 0
	for _, token := range tokens {
		if token == term {
			count++
		}
	}
	return float64(count) / float64(len(tokens))
}

// InverseDocumentFrequency returns ln(totalDocs/docsWithTerm), or 0 when
// either count is zero. No smoothing is applied: a term present in every
// document gets IDF 0 and contributes nothing to the score. That is the
// intended weighting, not an oversight.
func InverseDocumentFrequency(totalDocs, docsWithTerm int) float64 {
	if totalDocs == 0 || docsWithTerm == 0 {
		return 0.0
	}
	return math.Log(float64(totalDocs) / float64(docsWithTerm))
}

// ScoreDocument sums TF*IDF over all query terms. The term list is not
// deduplicated: a term repeated in the query contributes once per occurrence.
func ScoreDocument(doc store.Document, queryTerms []string, stats Stats) float64 {
	score := 0.0
	for _, term := range queryTerms {
		tf := TermFrequency(term, doc)
		if tf == 0 {
			continue
		}
		score += tf * InverseDocumentFrequency(stats.TotalDocs, stats.DocFreq[term])
	}
	return score
}

// Rank scores every candidate document, rounds scores to 4 decimal places,
// and sorts descending by score with ascending document ID as the tie-break,
// so equal inputs always produce identical output order.
func Rank(docs []store.Document, queryTerms []string, stats Stats) []ScoredDocument {
	ranked := make([]ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		score := ScoreDocument(doc, queryTerms, stats)
		ranked = append(ranked, ScoredDocument{
			Document:       doc,
			RelevanceScore: math.Round(score*10000) / 10000,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
