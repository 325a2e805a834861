package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements store.Store using PostgreSQL via pgx.
type Store struct {
	db *pgxpool.Pool
}

// New creates a new Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}
