// Package search orchestrates query execution: tokenize the query, expand it
// against the index vocabulary, resolve candidates through the inverted
// index, fetch the documents, rank, and paginate.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/docfind/docfind/internal/index"
	"github.com/docfind/docfind/internal/ranking"
	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/internal/textproc"
	"github.com/docfind/docfind/pkg/config"
	apperrors "github.com/docfind/docfind/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Result is the envelope returned for every search, including empty ones.
type Result struct {
	Query        string                   `json:"query"`
	TotalResults int                      `json:"total_results"`
	Page         int                      `json:"page"`
	Limit        int                      `json:"limit"`
	Results      []ranking.ScoredDocument `json:"results"`
}

// Processor executes search requests. It holds no per-request state; any
// number of searches may run concurrently against the shared index.
type Processor struct {
	index       *index.Index
	docs        store.DocumentStore
	expander    *Expander
	cfg         config.SearchConfig
	logger      *slog.Logger
	onExpansion func(terms int)
}

func NewProcessor(ix *index.Index, docs store.DocumentStore, cfg config.SearchConfig) *Processor {
	return &Processor{
		index:    ix,
		docs:     docs,
		expander: NewExpander(cfg.FuzzyThreshold, cfg.FuzzyMaxScan),
		cfg:      cfg,
		logger:   slog.Default().With("component", "query-processor"),
	}
}

// OnExpansion registers a callback invoked with the expanded term count after
// each fuzzy expansion. Used by the composing binary to feed metrics.
func (p *Processor) OnExpansion(fn func(terms int)) {
	p.onExpansion = fn
}

// Search runs the full query pipeline. A blank query, a query of nothing but
// stopwords, or a query matching no documents all produce a well-formed empty
// envelope, not an error; only store unavailability fails the search.
func (p *Processor) Search(ctx context.Context, query string, page, limit int, fuzzy bool) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.cfg.DefaultLimit
	}
	if limit > p.cfg.MaxLimit {
		limit = p.cfg.MaxLimit
	}

	terms := textproc.Process(query)
	if len(terms) == 0 {
		return emptyResult(query, page, limit), nil
	}

	if fuzzy {
		vocabulary, err := p.index.Vocabulary(ctx)
		if err != nil {
			return nil, fmt.Errorf("expanding query: %w", err)
		}
		terms = p.expander.Expand(terms, vocabulary)
		if p.onExpansion != nil {
			p.onExpansion(len(terms))
		}
	}

	candidateIDs, err := p.resolveCandidates(ctx, terms)
	if err != nil {
		return nil, err
	}
	if len(candidateIDs) == 0 {
		return emptyResult(query, page, limit), nil
	}

	docs, err := p.fetchDocuments(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	stats, err := p.gatherStats(ctx, terms)
	if err != nil {
		return nil, err
	}
	ranked := ranking.Rank(docs, terms, stats)

	totalResults := len(ranked)
	start := (page - 1) * limit
	end := start + limit
	if start > totalResults {
		start = totalResults
	}
	if end > totalResults {
		end = totalResults
	}
	pageResults := ranked[start:end]

	p.logger.Info("search completed",
		"query", query,
		"terms", len(terms),
		"candidates", len(candidateIDs),
		"total_results", totalResults,
		"page", page,
	)
	return &Result{
		Query:        query,
		TotalResults: totalResults,
		Page:         page,
		Limit:        limit,
		Results:      pageResults,
	}, nil
}

// resolveCandidates unions the posting of every expanded term into one
// candidate ID set.
func (p *Processor) resolveCandidates(ctx context.Context, terms []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, term := range terms {
		docIDs, err := p.index.DocumentsForTerm(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("resolving candidates: %w", err)
		}
		for _, id := range docIDs {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// fetchDocuments loads candidate documents from the store with bounded
// concurrency. A document that has vanished between index lookup and fetch is
// logged and skipped; the search never aborts for a missing document. Any
// other store failure cancels the remaining fetches and fails the search.
func (p *Processor) fetchDocuments(ctx context.Context, ids []string) ([]store.Document, error) {
	g, ctx := errgroup.WithContext(ctx)
	concurrency := p.cfg.FetchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	var mu sync.Mutex
	docs := make([]store.Document, 0, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			doc, err := p.docs.Get(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrDocumentNotFound) {
					p.logger.Warn("indexed document missing from store, skipping", "doc_id", id)
					return nil
				}
				return fmt.Errorf("fetching document %s: %w", id, err)
			}
			mu.Lock()
			docs = append(docs, *doc)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// gatherStats collects the corpus statistics ranking needs: total document
// count from the store and per-term document frequencies from the index.
func (p *Processor) gatherStats(ctx context.Context, terms []string) (ranking.Stats, error) {
	total, err := p.docs.Count(ctx)
	if err != nil {
		return ranking.Stats{}, fmt.Errorf("counting corpus: %w", err)
	}
	freqs, err := p.index.DocFrequencies(ctx, terms)
	if err != nil {
		return ranking.Stats{}, fmt.Errorf("gathering term frequencies: %w", err)
	}
	return ranking.Stats{TotalDocs: total, DocFreq: freqs}, nil
}

func emptyResult(query string, page, limit int) *Result {
	return &Result{
		Query:        query,
		TotalResults: 0,
		Page:         page,
		Limit:        limit,
		Results:      []ranking.ScoredDocument{},
	}
}
