// Package store defines the document entity and the keyed document store
// contract the search core reads from. The core never mutates documents; it
// only fetches title and content for indexing and scoring.
package store

import (
	"context"
	"time"
)

// Document is a corpus entry, owned by the backing store and referenced by
// the index through its ID.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore is the external collaborator the search core reads documents
// from. Get returns errors.ErrDocumentNotFound for a missing ID; any other
// error means the store is unavailable.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Count(ctx context.Context) (int, error)
}
