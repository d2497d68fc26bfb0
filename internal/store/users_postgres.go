package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore resolves comment authors from the users table.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) GetAuthor(ctx context.Context, id uuid.UUID) (Author, error) {
	const q = `SELECT id, name FROM users WHERE id = $1`
	var a Author
	err := s.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Author{}, ErrUserNotFound
	}
	return a, err
}

func (s *PostgresUserStore) GetAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Author, error) {
	out := make(map[uuid.UUID]Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const q = `SELECT id, name FROM users WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}
