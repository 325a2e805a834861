package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/avi3tal/stratagraph/pkg/store"
)

// Get fetches the document stored under key.
// Returns store.ErrNotFound if there is none.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT document FROM strategy_documents WHERE key = $1`, key,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrap(store.ErrNotFound, key)
		}
		return nil, errors.Wrap(err, "strategy: get document")
	}
	return doc, nil
}

// Set inserts or replaces the document stored under key.
func (s *Store) Set(ctx context.Context, key string, doc []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO strategy_documents (key, document) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
		key, doc,
	)
	if err != nil {
		return errors.Wrap(err, "strategy: set document")
	}
	return nil
}

// Delete removes the document stored under key.
// No error if the key doesn't exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM strategy_documents WHERE key = $1`, key); err != nil {
		return errors.Wrap(err, "strategy: delete document")
	}
	return nil
}

var _ store.Store = (*Store)(nil)
