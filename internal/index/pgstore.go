package index

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/docfind/docfind/pkg/errors"
	"github.com/docfind/docfind/pkg/postgres"
	"github.com/lib/pq"
)

// PostgresPostingStore persists postings in PostgreSQL.
//
// It requires a `postings` table:
//
//	CREATE TABLE postings (
//	    term    TEXT PRIMARY KEY,
//	    doc_ids TEXT[] NOT NULL
//	);
type PostgresPostingStore struct {
	db *postgres.Client
}

func NewPostgresPostingStore(db *postgres.Client) *PostgresPostingStore {
	return &PostgresPostingStore{db: db}
}

// Upsert adds docID to the term's posting, creating the posting if absent.
// The conditional array_append keeps the operation idempotent.
func (s *PostgresPostingStore) Upsert(ctx context.Context, term, docID string) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO postings (term, doc_ids) VALUES ($1, ARRAY[$2])
		 ON CONFLICT (term) DO UPDATE
		 SET doc_ids = array_append(postings.doc_ids, $2)
		 WHERE NOT postings.doc_ids @> ARRAY[$2]`,
		term, docID,
	)
	if err != nil {
		return fmt.Errorf("%w: upserting posting for %q: %v", apperrors.ErrStoreUnavailable, term, err)
	}
	return nil
}

// BulkRemove strips docID from every posting and deletes postings left empty.
func (s *PostgresPostingStore) BulkRemove(ctx context.Context, docID string) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE postings SET doc_ids = array_remove(doc_ids, $1) WHERE doc_ids @> ARRAY[$1]`,
			docID,
		); err != nil {
			return fmt.Errorf("%w: removing %s from postings: %v", apperrors.ErrStoreUnavailable, docID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM postings WHERE cardinality(doc_ids) = 0`,
		); err != nil {
			return fmt.Errorf("%w: pruning empty postings: %v", apperrors.ErrStoreUnavailable, err)
		}
		return nil
	})
}

func (s *PostgresPostingStore) Get(ctx context.Context, term string) (*Posting, error) {
	p := Posting{Term: term}
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT doc_ids FROM postings WHERE term = $1`,
		term,
	).Scan(pq.Array(&p.DocIDs))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying posting for %q: %v", apperrors.ErrStoreUnavailable, term, err)
	}
	return &p, nil
}

func (s *PostgresPostingStore) DistinctTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx, `SELECT term FROM postings ORDER BY term`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing terms: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scanning term row: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

func (s *PostgresPostingStore) Clear(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, `DELETE FROM postings`); err != nil {
		return fmt.Errorf("%w: clearing postings: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}
