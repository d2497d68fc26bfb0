package comments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a1nn1997/realtime-blog-backend/internal/cache"
	"github.com/a1nn1997/realtime-blog-backend/internal/store"
)

// GetPostComments returns one page of a post's comment forest: roots
// newest-first, replies oldest-first, at most MaxNestingDepth reply
// levels. Only the first page is cache-backed; any cache failure falls
// through to the database.
func (s *Service) GetPostComments(ctx context.Context, postID int64, page int) ([]CommentResponse, error) {
	if page < 1 {
		page = 1
	}

	key := cache.PostCommentsKey(postID)
	if page == 1 {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached []CommentResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			s.log.Warn("cached comment page is corrupt, rebuilding",
				zap.Int64("post_id", postID))
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("comment page cache read failed",
				zap.Int64("post_id", postID),
				zap.Error(err))
		}
	}

	roots, err := s.comments.RootsByPost(ctx, postID, CommentsPerPage, (page-1)*CommentsPerPage)
	if err != nil {
		return nil, fmt.Errorf("fetch roots: %w", err)
	}

	forest, err := s.buildForest(ctx, roots)
	if err != nil {
		return nil, err
	}

	if page == 1 {
		if data, err := json.Marshal(forest); err == nil {
			if err := s.cache.SetWithTTL(ctx, key, data, cache.PostCommentsTTL); err != nil {
				s.log.Warn("comment page cache write failed",
					zap.Int64("post_id", postID),
					zap.Error(err))
			}
		}
	}

	return forest, nil
}

// GetCommentCount returns the post's non-deleted comment count,
// cache-first with a database rebuild on miss.
func (s *Service) GetCommentCount(ctx context.Context, postID int64) (int64, error) {
	key := cache.PostCommentCountKey(postID)
	if data, err := s.cache.Get(ctx, key); err == nil {
		if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			return n, nil
		}
		s.log.Warn("cached comment count is corrupt, rebuilding",
			zap.Int64("post_id", postID))
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("comment count cache read failed",
			zap.Int64("post_id", postID),
			zap.Error(err))
	}

	n, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}

	if err := s.cache.SetWithTTL(ctx, key, []byte(strconv.FormatInt(n, 10)), cache.CommentCountTTL); err != nil {
		s.log.Warn("comment count cache write failed",
			zap.Int64("post_id", postID),
			zap.Error(err))
	}

	return n, nil
}

// buildForest assembles response trees from root rows, fetching each
// reply level with one batched query. Depth is tracked explicitly so a
// cycle in the data can never recurse past MaxNestingDepth.
func (s *Service) buildForest(ctx context.Context, roots []store.Comment) ([]CommentResponse, error) {
	nodes := make([]CommentResponse, len(roots))
	if len(roots) == 0 {
		return nodes, nil
	}

	authors, err := s.resolveAuthors(ctx, roots)
	if err != nil {
		return nil, err
	}

	parents := make(map[int64]*CommentResponse, len(roots))
	for i := range roots {
		nodes[i] = toResponse(roots[i], authors[roots[i].UserID])
		parents[roots[i].ID] = &nodes[i]
	}

	for depth := 1; depth <= MaxNestingDepth && len(parents) > 0; depth++ {
		ids := make([]int64, 0, len(parents))
		for id := range parents {
			ids = append(ids, id)
		}

		rows, err := s.comments.RepliesByParents(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("fetch replies at depth %d: %w", depth, err)
		}
		if len(rows) == 0 {
			break
		}

		authors, err := s.resolveAuthors(ctx, rows)
		if err != nil {
			return nil, err
		}

		grouped := make(map[int64][]CommentResponse)
		for _, row := range rows {
			pid := *row.ParentCommentID
			grouped[pid] = append(grouped[pid], toResponse(row, authors[row.UserID]))
		}

		next := make(map[int64]*CommentResponse)
		for pid, replies := range grouped {
			parent := parents[pid]
			parent.Replies = replies
			for i := range parent.Replies {
				next[parent.Replies[i].ID] = &parent.Replies[i]
			}
		}
		parents = next
	}

	return nodes, nil
}

// resolveAuthors batch-loads the author briefs for a set of rows. An
// unknown author id resolves to a brief with an empty name rather than
// failing the page.
func (s *Service) resolveAuthors(ctx context.Context, rows []store.Comment) (map[uuid.UUID]CommentAuthor, error) {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		ids = append(ids, row.UserID)
	}

	found, err := s.users.GetAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	authors := make(map[uuid.UUID]CommentAuthor, len(ids))
	for _, id := range ids {
		if a, ok := found[id]; ok {
			authors[id] = CommentAuthor{ID: a.ID, Name: a.Name}
		} else {
			authors[id] = CommentAuthor{ID: id}
		}
	}
	return authors, nil
}

func toResponse(c store.Comment, author CommentAuthor) CommentResponse {
	return CommentResponse{
		ID:              c.ID,
		ContentHTML:     c.ContentHTML,
		Author:          author,
		CreatedAt:       c.CreatedAt,
		ParentCommentID: c.ParentCommentID,
	}
}
