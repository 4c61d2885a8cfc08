package index

import (
	"context"
	"sort"
	"sync"
)

// MemoryPostingStore keeps postings in memory guarded by a RWMutex. Readers
// always receive a copy of the doc ID set, so a lookup concurrent with a
// mutation sees either the pre- or post-mutation posting, never a torn one.
type MemoryPostingStore struct {
	mu       sync.RWMutex
	postings map[string]map[string]struct{}
}

func NewMemoryPostingStore() *MemoryPostingStore {
	return &MemoryPostingStore{
		postings: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryPostingStore) Upsert(ctx context.Context, term, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.postings[term]
	if !ok {
		docs = make(map[string]struct{})
		s.postings[term] = docs
	}
	docs[docID] = struct{}{}
	return nil
}

func (s *MemoryPostingStore) BulkRemove(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for term, docs := range s.postings {
		if _, ok := docs[docID]; !ok {
			continue
		}
		delete(docs, docID)
		if len(docs) == 0 {
			delete(s.postings, term)
		}
	}
	return nil
}

func (s *MemoryPostingStore) Get(ctx context.Context, term string) (*Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.postings[term]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Posting{Term: term, DocIDs: ids}, nil
}

func (s *MemoryPostingStore) DistinctTerms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	terms := make([]string, 0, len(s.postings))
	for term := range s.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms, nil
}

func (s *MemoryPostingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = make(map[string]map[string]struct{})
	return nil
}
