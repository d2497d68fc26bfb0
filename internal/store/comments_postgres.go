package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, post_id, user_id, parent_comment_id, content, content_html,
	is_deleted, deleted_by, deleted_at, markdown_enabled, nesting_level, created_at, updated_at`

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

func (s *PostgresCommentStore) Create(ctx context.Context, c Comment) (Comment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Comment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `INSERT INTO comments
	             (post_id, user_id, parent_comment_id, content, content_html, markdown_enabled, nesting_level)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING ` + commentColumns
	row := tx.QueryRow(ctx, q, c.PostID, c.UserID, c.ParentCommentID,
		c.Content, c.ContentHTML, c.MarkdownEnabled, c.NestingLevel)
	out, err := scanComment(row)
	if err != nil {
		return Comment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Comment{}, err
	}
	return out, nil
}

func (s *PostgresCommentStore) GetByID(ctx context.Context, id int64) (Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	out, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	return out, err
}

func (s *PostgresCommentStore) RootsByPost(ctx context.Context, postID int64, limit, offset int) ([]Comment, error) {
	const q = `SELECT ` + commentColumns + `
	           FROM comments
	           WHERE post_id = $1 AND parent_comment_id IS NULL AND is_deleted = false
	           ORDER BY created_at DESC, id DESC
	           LIMIT $2 OFFSET $3`
	return s.scanComments(ctx, q, postID, limit, offset)
}

func (s *PostgresCommentStore) RepliesByParents(ctx context.Context, parentIDs []int64) ([]Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + commentColumns + `
	           FROM comments
	           WHERE parent_comment_id = ANY($1) AND is_deleted = false
	           ORDER BY created_at ASC, id ASC`
	return s.scanComments(ctx, q, parentIDs)
}

func (s *PostgresCommentStore) CountByPost(ctx context.Context, postID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM comments WHERE post_id = $1 AND is_deleted = false`
	var n int64
	err := s.pool.QueryRow(ctx, q, postID).Scan(&n)
	return n, err
}

func (s *PostgresCommentStore) SoftDelete(ctx context.Context, id int64, deletedBy uuid.UUID) error {
	const q = `UPDATE comments
	           SET is_deleted = true, content = $2, content_html = $3,
	               deleted_by = $4, deleted_at = now(), updated_at = now()
	           WHERE id = $1 AND is_deleted = false`
	tag, err := s.pool.Exec(ctx, q, id, SoftDeleteMark, SoftDeleteMarkHTML, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *PostgresCommentStore) scanComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.ParentCommentID,
		&c.Content, &c.ContentHTML, &c.IsDeleted, &c.DeletedBy, &c.DeletedAt,
		&c.MarkdownEnabled, &c.NestingLevel, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
