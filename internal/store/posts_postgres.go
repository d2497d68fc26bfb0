package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostStore answers post-existence checks from the posts table.
type PostgresPostStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPostStore(pool *pgxpool.Pool) *PostgresPostStore {
	return &PostgresPostStore{pool: pool}
}

func (s *PostgresPostStore) Exists(ctx context.Context, postID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND is_deleted = false)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, postID).Scan(&exists)
	return exists, err
}
