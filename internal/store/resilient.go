package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/docfind/docfind/pkg/errors"
	"github.com/docfind/docfind/pkg/resilience"
)

// ResilientStore decorates a DocumentStore with a circuit breaker and a
// per-call timeout. When the breaker is open, calls fail fast as
// ErrStoreUnavailable instead of piling up on a dead backend. Not-found
// results are normal outcomes and never trip the breaker.
type ResilientStore struct {
	inner       DocumentStore
	breaker     *resilience.CircuitBreaker
	callTimeout time.Duration
}

func NewResilientStore(inner DocumentStore, cfg resilience.CircuitBreakerConfig, callTimeout time.Duration) *ResilientStore {
	return &ResilientStore{
		inner:       inner,
		breaker:     resilience.NewCircuitBreaker("document-store", cfg),
		callTimeout: callTimeout,
	}
}

func (s *ResilientStore) Get(ctx context.Context, id string) (*Document, error) {
	var doc *Document
	err := s.execute(ctx, "get", func(ctx context.Context) error {
		var err error
		doc, err = s.inner.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ResilientStore) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := s.execute(ctx, "list", func(ctx context.Context) error {
		var err error
		docs, err = s.inner.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *ResilientStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.execute(ctx, "count", func(ctx context.Context) error {
		var err error
		count, err = s.inner.Count(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ResilientStore) execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var notFound error
	err := s.breaker.Execute(func() error {
		err := resilience.WithTimeout(ctx, s.callTimeout, "document-store "+op, fn)
		if errors.Is(err, apperrors.ErrDocumentNotFound) {
			notFound = err
			return nil
		}
		return err
	})
	if notFound != nil {
		return notFound
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return err
}
