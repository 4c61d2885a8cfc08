package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docfind/docfind/internal/index"
	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/pkg/config"
	apperrors "github.com/docfind/docfind/pkg/errors"
)

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultLimit:     10,
		MaxLimit:         100,
		FuzzyThreshold:   0.7,
		FuzzyMaxScan:     50000,
		FetchConcurrency: 4,
	}
}

// newTestProcessor wires a processor over in-memory stores preloaded with
// docs, indexing each one.
func newTestProcessor(t *testing.T, docs ...store.Document) (*Processor, *store.MemoryStore, *index.Index) {
	t.Helper()
	docStore := store.NewMemoryStore()
	ix := index.New(index.NewMemoryPostingStore())
	ctx := context.Background()
	for _, doc := range docs {
		docStore.Put(doc)
		if err := ix.Add(ctx, doc.ID, doc.Title, doc.Content); err != nil {
			t.Fatalf("indexing %s: %v", doc.ID, err)
		}
	}
	return NewProcessor(ix, docStore, testSearchConfig()), docStore, ix
}

var (
	docPython = store.Document{ID: "doc-a", Title: "Python Basics", Content: "python is great"}
	docJava   = store.Document{ID: "doc-b", Title: "Java Basics", Content: "java is cool"}
)

func TestSearchExactMatch(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython, docJava)

	res, err := p.Search(context.Background(), "python", 1, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 1 {
		t.Fatalf("total_results = %d, want 1", res.TotalResults)
	}
	if res.Results[0].ID != "doc-a" {
		t.Fatalf("top result = %s, want doc-a", res.Results[0].ID)
	}
	// TF 0.5 in the title-doubled token stream, IDF ln(2/1).
	if res.Results[0].RelevanceScore != 0.3466 {
		t.Fatalf("score = %v, want 0.3466", res.Results[0].RelevanceScore)
	}
}

func TestSearchSharedTermMatchesBoth(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython, docJava)

	res, err := p.Search(context.Background(), "basics", 1, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 2 {
		t.Fatalf("total_results = %d, want 2", res.TotalResults)
	}
	// basics occurs in every document, so IDF and both scores are zero and
	// the tie-break orders by ID.
	if res.Results[0].ID != "doc-a" || res.Results[1].ID != "doc-b" {
		t.Fatalf("unexpected order: %s, %s", res.Results[0].ID, res.Results[1].ID)
	}
	if res.Results[0].RelevanceScore != 0 {
		t.Fatalf("expected zero score for ubiquitous term, got %v", res.Results[0].RelevanceScore)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython)

	res, err := p.Search(context.Background(), "", 1, 10, true)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 0 || len(res.Results) != 0 {
		t.Fatalf("expected empty envelope, got %+v", res)
	}
	if res.Results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
	if res.Page != 1 || res.Limit != 10 {
		t.Fatalf("page/limit not echoed: %d/%d", res.Page, res.Limit)
	}
}

func TestSearchStopwordOnlyQuery(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython)

	res, err := p.Search(context.Background(), "the and of", 1, 10, true)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 0 {
		t.Fatalf("total_results = %d, want 0", res.TotalResults)
	}
}

func TestSearchNoMatches(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython, docJava)

	res, err := p.Search(context.Background(), "kubernetes", 1, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 0 || len(res.Results) != 0 {
		t.Fatalf("expected no results, got %+v", res)
	}
}

func TestSearchFuzzyExpansion(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython, docJava)

	// Misspelled query; character overlap with "python" is 5/6.
	res, err := p.Search(context.Background(), "pythn", 1, 10, true)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 1 || res.Results[0].ID != "doc-a" {
		t.Fatalf("fuzzy search missed doc-a: %+v", res)
	}

	// The same query without expansion finds nothing.
	res, err = p.Search(context.Background(), "pythn", 1, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 0 {
		t.Fatalf("exact search matched misspelling: %+v", res)
	}
}

func TestSearchPagination(t *testing.T) {
	docs := make([]store.Document, 0, 5)
	for i := 0; i < 5; i++ {
		docs = append(docs, store.Document{
			ID:      fmt.Sprintf("doc-%d", i),
			Title:   "Python",
			Content: "python notes",
		})
	}
	p, _, _ := newTestProcessor(t, docs...)

	page1, err := p.Search(context.Background(), "python", 1, 2, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page1.TotalResults != 5 || len(page1.Results) != 2 {
		t.Fatalf("page 1: total=%d len=%d, want 5/2", page1.TotalResults, len(page1.Results))
	}

	page3, err := p.Search(context.Background(), "python", 3, 2, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(page3.Results) != 1 {
		t.Fatalf("page 3: len=%d, want 1", len(page3.Results))
	}

	// Pages never overlap or repeat documents.
	page2, err := p.Search(context.Background(), "python", 2, 2, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	seen := map[string]struct{}{}
	for _, r := range append(append(page1.Results, page2.Results...), page3.Results...) {
		if _, dup := seen[r.ID]; dup {
			t.Fatalf("document %s appeared on two pages", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
}

func TestSearchPageBeyondResults(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython)

	res, err := p.Search(context.Background(), "python", 99, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 1 {
		t.Fatalf("total_results = %d, want 1", res.TotalResults)
	}
	if len(res.Results) != 0 {
		t.Fatalf("expected empty page, got %d results", len(res.Results))
	}
	if res.Page != 99 {
		t.Fatalf("page = %d, want 99", res.Page)
	}
}

func TestSearchNormalizesPageAndLimit(t *testing.T) {
	p, _, _ := newTestProcessor(t, docPython)

	res, err := p.Search(context.Background(), "python", 0, 0, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Page != 1 || res.Limit != 10 {
		t.Fatalf("page/limit = %d/%d, want 1/10", res.Page, res.Limit)
	}

	res, err = p.Search(context.Background(), "python", 1, 5000, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Limit != 100 {
		t.Fatalf("limit = %d, want clamped to 100", res.Limit)
	}
}

func TestSearchSkipsVanishedDocument(t *testing.T) {
	p, docStore, _ := newTestProcessor(t, docPython, docJava)

	// Delete from the store without deindexing; stale posting entries must
	// not fail the search.
	docStore.Delete("doc-a")

	res, err := p.Search(context.Background(), "basics", 1, 10, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalResults != 1 || res.Results[0].ID != "doc-b" {
		t.Fatalf("expected only doc-b, got %+v", res)
	}
}

func TestSearchStoreUnavailable(t *testing.T) {
	ix := index.New(index.NewMemoryPostingStore())
	ctx := context.Background()
	if err := ix.Add(ctx, docPython.ID, docPython.Title, docPython.Content); err != nil {
		t.Fatalf("indexing: %v", err)
	}
	p := NewProcessor(ix, failingStore{}, testSearchConfig())

	_, err := p.Search(ctx, "python", 1, 10, false)
	if err == nil {
		t.Fatal("expected error from unavailable store")
	}
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
}

// failingStore simulates an unreachable document store.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, id string) (*store.Document, error) {
	return nil, fmt.Errorf("%w: connection refused", apperrors.ErrStoreUnavailable)
}

func (failingStore) List(ctx context.Context) ([]store.Document, error) {
	return nil, fmt.Errorf("%w: connection refused", apperrors.ErrStoreUnavailable)
}

func (failingStore) Count(ctx context.Context) (int, error) {
	return 0, fmt.Errorf("%w: connection refused", apperrors.ErrStoreUnavailable)
}
