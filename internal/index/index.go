// Package index maintains the inverted index: the term -> posting mapping
// that resolves query terms to candidate documents. The index owns the
// posting collection; only the document write path mutates it.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/internal/textproc"
)

// Index keeps postings consistent with the document corpus.
type Index struct {
	postings PostingStore
	logger   *slog.Logger
}

func New(postings PostingStore) *Index {
	return &Index{
		postings: postings,
		logger:   slog.Default().With("component", "inverted-index"),
	}
}

// Add indexes one document: every distinct term of the title-doubled weighted
// text gains the document's ID in its posting. Reindexing identical content
// is a no-op, and a document with no indexable terms indexes nothing without
// error.
func (ix *Index) Add(ctx context.Context, docID, title, content string) error {
	terms := textproc.UniqueTerms(textproc.WeightedText(title, content))
	for _, term := range terms {
		if err := ix.postings.Upsert(ctx, term, docID); err != nil {
			return fmt.Errorf("indexing document %s: %w", docID, err)
		}
	}
	ix.logger.Debug("document indexed", "doc_id", docID, "unique_terms", len(terms))
	return nil
}

// Remove deletes the document from every posting it appears in and prunes
// postings left empty. Removing a document the index has never seen is a
// no-op.
func (ix *Index) Remove(ctx context.Context, docID string) error {
	if err := ix.postings.BulkRemove(ctx, docID); err != nil {
		return fmt.Errorf("removing document %s from index: %w", docID, err)
	}
	ix.logger.Debug("document removed from index", "doc_id", docID)
	return nil
}

// Reindex replaces a document's postings with those of its new content.
func (ix *Index) Reindex(ctx context.Context, docID, title, content string) error {
	if err := ix.Remove(ctx, docID); err != nil {
		return err
	}
	return ix.Add(ctx, docID, title, content)
}

// DocumentsForTerm resolves a term to the IDs of the documents containing it.
// The lookup is case-insensitive; an unindexed term yields an empty set.
func (ix *Index) DocumentsForTerm(ctx context.Context, term string) ([]string, error) {
	posting, err := ix.postings.Get(ctx, strings.ToLower(term))
	if err != nil {
		return nil, fmt.Errorf("looking up term %q: %w", term, err)
	}
	if posting == nil {
		return nil, nil
	}
	return posting.DocIDs, nil
}

// DocFrequencies returns, for each given term, the number of documents whose
// postings contain it. Terms with no posting map to 0.
func (ix *Index) DocFrequencies(ctx context.Context, terms []string) (map[string]int, error) {
	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		posting, err := ix.postings.Get(ctx, strings.ToLower(term))
		if err != nil {
			return nil, fmt.Errorf("looking up term %q: %w", term, err)
		}
		if posting != nil {
			freqs[term] = posting.DocCount()
		}
	}
	return freqs, nil
}

// Vocabulary returns the distinct set of all indexed terms.
func (ix *Index) Vocabulary(ctx context.Context) ([]string, error) {
	terms, err := ix.postings.DistinctTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vocabulary: %w", err)
	}
	return terms, nil
}

// Rebuild clears all postings and reindexes the given corpus from scratch,
// returning the number of documents indexed. Postings are order-independent:
// the result is set-equal to indexing the same documents incrementally in any
// order. Used for recovery and consistency repair.
func (ix *Index) Rebuild(ctx context.Context, docs []store.Document) (int, error) {
	if err := ix.postings.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}
	count := 0
	for _, doc := range docs {
		if err := ix.Add(ctx, doc.ID, doc.Title, doc.Content); err != nil {
			return count, err
		}
		count++
	}
	ix.logger.Info("index rebuilt", "documents", count)
	return count, nil
}
