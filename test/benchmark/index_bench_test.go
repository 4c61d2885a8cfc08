// Package benchmark contains Go benchmarks for the inverted index and the
// search pipeline, measuring throughput and allocation behaviour over the
// in-memory stores.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/docfind/docfind/internal/index"
	"github.com/docfind/docfind/internal/search"
	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/pkg/config"
)

// BenchmarkIndexAdd measures per-document insert throughput into the
// in-memory posting store.
func BenchmarkIndexAdd(b *testing.B) {
	ix := index.New(index.NewMemoryPostingStore())
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		docID := fmt.Sprintf("doc-%d", i)
		ix.Add(ctx, docID, "benchmark title", "this document carries several distinct terms for measuring indexing throughput")
	}
}

// BenchmarkIndexLookup measures single-term posting lookup latency over
// 10 000 documents.
func BenchmarkIndexLookup(b *testing.B) {
	ix := index.New(index.NewMemoryPostingStore())
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		docID := fmt.Sprintf("doc-%d", i)
		ix.Add(ctx, docID, "document search", "full text search with ranking and pagination")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ids, _ := ix.DocumentsForTerm(ctx, "search")
		_ = ids
	}
}

// BenchmarkSearch measures end-to-end query latency at various corpus sizes,
// exact matching only.
func BenchmarkSearch(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	terms := []string{"python", "ranking", "database", "index", "pagination", "query", "engine", "tokenizer"}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("corpus_%d", size), func(b *testing.B) {
			p := newBenchProcessor(b, size, terms)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				res, err := p.Search(ctx, terms[i%len(terms)], 1, 10, false)
				if err != nil {
					b.Fatal(err)
				}
				_ = res
			}
		})
	}
}

// BenchmarkSearchFuzzy measures query latency with fuzzy expansion over the
// full vocabulary.
func BenchmarkSearchFuzzy(b *testing.B) {
	terms := []string{"python", "ranking", "database", "index", "pagination", "query", "engine", "tokenizer"}
	p := newBenchProcessor(b, 10000, terms)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := p.Search(ctx, "pythn", 1, 10, true)
		if err != nil {
			b.Fatal(err)
		}
		_ = res
	}
}

func newBenchProcessor(b *testing.B, size int, terms []string) *search.Processor {
	b.Helper()
	docs := store.NewMemoryStore()
	ix := index.New(index.NewMemoryPostingStore())
	ctx := context.Background()
	for i := 0; i < size; i++ {
		doc := store.Document{
			ID:    fmt.Sprintf("doc-%d", i),
			Title: fmt.Sprintf("notes on %s and %s", terms[i%len(terms)], terms[(i+1)%len(terms)]),
			Content: fmt.Sprintf("this document covers %s %s %s in production systems",
				terms[i%len(terms)], terms[(i+2)%len(terms)], terms[(i+3)%len(terms)]),
		}
		docs.Put(doc)
		if err := ix.Add(ctx, doc.ID, doc.Title, doc.Content); err != nil {
			b.Fatal(err)
		}
	}
	cfg := config.SearchConfig{
		DefaultLimit:     10,
		MaxLimit:         100,
		FuzzyThreshold:   0.7,
		FuzzyMaxScan:     50000,
		FetchConcurrency: 8,
	}
	return search.NewProcessor(ix, docs, cfg)
}
