package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/docfind/docfind/internal/search"
	"github.com/docfind/docfind/internal/textproc"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Full text search engines normalize incoming documents by lowercasing,
        splitting on non-word characters, and discarding stop words. The surviving
        terms feed an inverted index that maps each term to the documents containing
        it. At query time the same pipeline runs over the query string so that both
        sides of the lookup agree on term boundaries and casing.`,
	"long": strings.Repeat(`Information retrieval systems combine tokenization and stop word
        removal to normalize text into searchable terms. The inverted index maps each
        term to the documents containing it. TF-IDF ranking considers term frequency
        within a document and inverse document frequency across the corpus to produce
        relevance scores. Caching layers reduce latency for repeated queries while
        circuit breakers protect against cascade failures. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := textproc.Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkProcess(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		terms := textproc.Process(text)
		_ = terms
	}
}

func BenchmarkProcessParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			terms := textproc.Process(text)
			_ = terms
		}
	})
}

// BenchmarkFuzzyExpand measures query expansion cost against vocabularies of
// increasing size.
func BenchmarkFuzzyExpand(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		vocabulary := make([]string, 0, size)
		for i := 0; i < size; i++ {
			vocabulary = append(vocabulary, fmt.Sprintf("term%06d", i))
		}
		vocabulary = append(vocabulary, "python", "ranking", "database")

		b.Run(fmt.Sprintf("vocab_%d", size), func(b *testing.B) {
			e := search.NewExpander(0.7, 0)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				expanded := e.Expand([]string{"pythn", "rankng"}, vocabulary)
				_ = expanded
			}
		})
	}
}
