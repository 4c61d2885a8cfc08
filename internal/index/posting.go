package index

import "context"

// Posting is the set of document IDs associated with one indexed term.
// Cardinality is always computed as len(DocIDs) at read time; there is no
// cached count to go stale under concurrent mutation.
type Posting struct {
	Term   string   `json:"term"`
	DocIDs []string `json:"doc_ids"`
}

// DocCount returns the number of documents containing the term.
func (p *Posting) DocCount() int {
	return len(p.DocIDs)
}

// PostingStore persists postings. Implementations must keep the set semantics
// of DocIDs: Upsert adds a document to a term at most once, and BulkRemove
// deletes any posting left empty. Get returns (nil, nil) when the term has no
// posting; that is a normal outcome, not an error.
type PostingStore interface {
	Upsert(ctx context.Context, term, docID string) error
	BulkRemove(ctx context.Context, docID string) error
	Get(ctx context.Context, term string) (*Posting, error)
	DistinctTerms(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}
