package store

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/docfind/docfind/pkg/errors"
	"github.com/docfind/docfind/pkg/postgres"
)

// PostgresStore is a DocumentStore backed by PostgreSQL.
//
// It requires a `documents` table:
//
//	CREATE TABLE documents (
//	    id         TEXT PRIMARY KEY,
//	    title      TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	db *postgres.Client
}

func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying document %s: %v", apperrors.ErrStoreUnavailable, id, err)
	}
	return &doc, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", apperrors.ErrStoreUnavailable, err)
	}
	return count, nil
}
