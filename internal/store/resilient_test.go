package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/docfind/docfind/pkg/errors"
	"github.com/docfind/docfind/pkg/resilience"
)

// flakyStore fails every call until the fail counter runs out.
type flakyStore struct {
	failures int
	calls    int
}

func (s *flakyStore) Get(ctx context.Context, id string) (*Document, error) {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, fmt.Errorf("%w: connection reset", apperrors.ErrStoreUnavailable)
	}
	return &Document{ID: id}, nil
}

func (s *flakyStore) List(ctx context.Context) ([]Document, error) {
	s.calls++
	return nil, nil
}

func (s *flakyStore) Count(ctx context.Context) (int, error) {
	s.calls++
	return 0, nil
}

func testBreakerConfig() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		FailureThreshold:    3,
		ResetTimeout:        time.Hour,
		HalfOpenMaxRequests: 1,
	}
}

func TestResilientStorePassesThrough(t *testing.T) {
	rs := NewResilientStore(&flakyStore{}, testBreakerConfig(), time.Second)

	doc, err := rs.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Fatalf("got doc %s, want doc-1", doc.ID)
	}
}

func TestResilientStoreOpensAfterThreshold(t *testing.T) {
	inner := &flakyStore{failures: 100}
	rs := NewResilientStore(inner, testBreakerConfig(), time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := rs.Get(ctx, "doc-1"); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}
	callsBeforeOpen := inner.calls

	// Breaker is open now; calls fail fast without touching the backend and
	// surface as store unavailability.
	_, err := rs.Get(ctx, "doc-1")
	if err == nil {
		t.Fatal("expected fast failure with open breaker")
	}
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
	if inner.calls != callsBeforeOpen {
		t.Fatalf("open breaker reached the backend (%d calls, had %d)", inner.calls, callsBeforeOpen)
	}
}

func TestResilientStoreNotFoundDoesNotTrip(t *testing.T) {
	rs := NewResilientStore(NewMemoryStore(), testBreakerConfig(), time.Second)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := rs.Get(ctx, "missing")
		if !errors.Is(err, apperrors.ErrDocumentNotFound) {
			t.Fatalf("call %d: error = %v, want ErrDocumentNotFound", i, err)
		}
	}

	// Well past the failure threshold, yet a real document still loads.
	inner := NewMemoryStore()
	inner.Put(Document{ID: "doc-1", Title: "T"})
	rs2 := NewResilientStore(inner, testBreakerConfig(), time.Second)
	for i := 0; i < 10; i++ {
		rs2.Get(ctx, "missing")
	}
	if _, err := rs2.Get(ctx, "doc-1"); err != nil {
		t.Fatalf("breaker tripped on not-found results: %v", err)
	}
}

func TestResilientStoreRecoversAfterSuccess(t *testing.T) {
	inner := &flakyStore{failures: 2}
	rs := NewResilientStore(inner, testBreakerConfig(), time.Second)
	ctx := context.Background()

	rs.Get(ctx, "doc-1")
	rs.Get(ctx, "doc-1")

	// Two failures is under the threshold of three; the next call succeeds
	// and resets the failure count.
	if _, err := rs.Get(ctx, "doc-1"); err != nil {
		t.Fatalf("get failed after backend recovered: %v", err)
	}
}
