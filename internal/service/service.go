// Package service composes the search core into the surface the rest of the
// system calls: the search operation plus the index-maintenance operations
// the document CRUD layer invokes on every create, update, and delete.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docfind/docfind/internal/events"
	"github.com/docfind/docfind/internal/index"
	"github.com/docfind/docfind/internal/search"
	"github.com/docfind/docfind/internal/search/cache"
	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/pkg/metrics"
)

// Service ties the inverted index, the query processor, the document store,
// and the optional cache and event publisher together. Cache and publisher
// may be nil; everything degrades to the uncached, unobserved path.
type Service struct {
	index     *index.Index
	processor *search.Processor
	docs      store.DocumentStore
	cache     *cache.QueryCache
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(ix *index.Index, processor *search.Processor, docs store.DocumentStore, opts ...Option) *Service {
	s := &Service{
		index:     ix,
		processor: processor,
		docs:      docs,
		logger:    slog.Default().With("component", "search-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures optional Service collaborators.
type Option func(*Service)

func WithCache(c *cache.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Search executes a query, serving from the cache when possible.
func (s *Service) Search(ctx context.Context, query string, page, limit int, fuzzy bool) (*search.Result, error) {
	start := time.Now()
	var result *search.Result
	var err error
	cacheHit := false

	if s.cache != nil {
		result, cacheHit, err = s.cache.GetOrCompute(ctx, query, page, limit, fuzzy, func() (*search.Result, error) {
			return s.processor.Search(ctx, query, page, limit, fuzzy)
		})
	} else {
		result, err = s.processor.Search(ctx, query, page, limit, fuzzy)
	}

	if s.metrics != nil {
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
			s.metrics.CacheHitsTotal.Inc()
		} else if s.cache != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
		s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		case result.TotalResults == 0:
			s.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
		default:
			s.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
			s.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
		}
	}
	return result, err
}

// IndexDocument adds a document to the index and invalidates cached results.
func (s *Service) IndexDocument(ctx context.Context, id, title, content string) error {
	if err := s.index.Add(ctx, id, title, content); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
	}
	s.afterMutation(ctx, events.IndexEvent{Type: events.EventIndexed, DocID: id})
	return nil
}

// ReindexDocument removes a document's old postings and indexes its new
// content, the maintenance path for document updates.
func (s *Service) ReindexDocument(ctx context.Context, id, title, content string) error {
	if err := s.index.Reindex(ctx, id, title, content); err != nil {
		return err
	}
	s.afterMutation(ctx, events.IndexEvent{Type: events.EventIndexed, DocID: id})
	return nil
}

// DeindexDocument removes a document from every posting.
func (s *Service) DeindexDocument(ctx context.Context, id string) error {
	if err := s.index.Remove(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsDeindexedTotal.Inc()
	}
	s.afterMutation(ctx, events.IndexEvent{Type: events.EventDeindexed, DocID: id})
	return nil
}

// RebuildIndex re-creates every posting from the full corpus and returns the
// number of documents indexed.
func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		}
		return 0, fmt.Errorf("listing corpus for rebuild: %w", err)
	}
	count, err := s.index.Rebuild(ctx, docs)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		}
		return count, err
	}
	if s.metrics != nil {
		s.metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	}
	s.afterMutation(ctx, events.IndexEvent{Type: events.EventRebuilt, DocCount: count})
	return count, nil
}

// afterMutation invalidates the local query cache and notifies other
// replicas. Both are best-effort; the index mutation has already succeeded.
func (s *Service) afterMutation(ctx context.Context, event events.IndexEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Error("cache invalidation after index mutation failed", "error", err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}
}
