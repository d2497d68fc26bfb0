package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a1nn1997/realtime-blog-backend/internal/cache"
	"github.com/a1nn1997/realtime-blog-backend/internal/notify"
	"github.com/a1nn1997/realtime-blog-backend/internal/ratelimit"
	"github.com/a1nn1997/realtime-blog-backend/internal/render"
	"github.com/a1nn1997/realtime-blog-backend/internal/store"
)

// Service owns the comment read and write paths. The database is the
// source of truth; the cache holds derived projections that every write
// invalidates before returning.
type Service struct {
	log      *zap.Logger
	comments store.CommentStore
	posts    store.PostStore
	users    store.UserStore
	cache    cache.Cache
	limiter  *ratelimit.Limiter
	renderer render.Renderer
	broker   notify.Broker
	events   notify.EventSink
}

// Config carries the service collaborators.
type Config struct {
	Log      *zap.Logger
	Comments store.CommentStore
	Posts    store.PostStore
	Users    store.UserStore
	Cache    cache.Cache
	Limiter  *ratelimit.Limiter
	Renderer render.Renderer
	Broker   notify.Broker
	Events   notify.EventSink
}

func NewService(cfg Config) *Service {
	return &Service{
		log:      cfg.Log,
		comments: cfg.Comments,
		posts:    cfg.Posts,
		users:    cfg.Users,
		cache:    cfg.Cache,
		limiter:  cfg.Limiter,
		renderer: cfg.Renderer,
		broker:   cfg.Broker,
		events:   cfg.Events,
	}
}

// Create validates, rate-limits and persists a new comment, then runs the
// write side effects. Validation happens first so malformed input never
// consumes the actor's rate-limit window.
func (s *Service) Create(ctx context.Context, postID int64, actorID uuid.UUID, req CreateCommentRequest) (*CommentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, &ValidationError{Reason: "Comment content cannot be empty"}
	}
	if utf8.RuneCountInString(req.Content) > MaxContentLength {
		return nil, &ValidationError{Reason: "Comment content cannot exceed 5000 characters"}
	}

	limited, err := s.limiter.CheckAndSet(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if limited {
		return nil, ErrRateLimited
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, ErrPostNotFound
	}

	var parent *store.Comment
	level := int32(0)
	if req.ParentCommentID != nil {
		p, err := s.comments.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			if errors.Is(err, store.ErrCommentNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("load parent: %w", err)
		}
		level = p.NestingLevel + 1
		if level > MaxNestingDepth {
			return nil, ErrMaxDepth
		}
		parent = &p
	}

	html, err := s.renderer.Render(req.Content, req.MarkdownEnabled)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	created, err := s.comments.Create(ctx, store.Comment{
		PostID:          postID,
		UserID:          actorID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
		ContentHTML:     html,
		MarkdownEnabled: req.MarkdownEnabled,
		NestingLevel:    level,
	})
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	author, err := s.users.GetAuthor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}

	if parent != nil && parent.UserID != actorID {
		s.events.Dispatch(notify.Event{
			RecipientID:     parent.UserID,
			Type:            notify.TypeCommentReply,
			ObjectID:        created.ID,
			RelatedObjectID: &postID,
			ActorID:         actorID,
			Content:         "You have a new reply to your comment.",
		})
	}

	s.invalidatePage(ctx, postID)
	s.adjustCount(ctx, postID, 1)
	s.appendChange(ctx, notify.Change{
		Event:     notify.ChangeCreated,
		PostID:    postID,
		CommentID: created.ID,
		ParentID:  created.ParentCommentID,
	})

	resp := toResponse(created, CommentAuthor{ID: author.ID, Name: author.Name})
	return &resp, nil
}

// Delete soft-deletes a comment. The author may delete their own comment;
// a privileged actor may delete any. Descendant rows are not cascaded, but
// the read path filters deleted nodes at every level, so the subtree stops
// appearing in page output.
func (s *Service) Delete(ctx context.Context, commentID int64, actorID uuid.UUID, privileged bool) (int64, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load comment: %w", err)
	}
	if c.IsDeleted {
		return 0, ErrNotFound
	}
	if c.UserID != actorID && !privileged {
		return 0, ErrUnauthorized
	}

	if err := s.comments.SoftDelete(ctx, commentID, actorID); err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("soft delete: %w", err)
	}

	s.invalidatePage(ctx, c.PostID)
	s.adjustCount(ctx, c.PostID, -1)
	s.appendChange(ctx, notify.Change{
		Event:     notify.ChangeDeleted,
		PostID:    c.PostID,
		CommentID: commentID,
	})

	return commentID, nil
}

// invalidatePage drops the cached first page for a post. Failures are
// logged and swallowed: the entry expires on its own TTL.
func (s *Service) invalidatePage(ctx context.Context, postID int64) {
	if err := s.cache.Delete(ctx, cache.PostCommentsKey(postID)); err != nil {
		s.log.Warn("comment page invalidation failed",
			zap.Int64("post_id", postID),
			zap.Error(err))
	}
}

// adjustCount nudges the cached comment count if one exists. An absent
// key is left absent so the next read rebuilds it from the database.
func (s *Service) adjustCount(ctx context.Context, postID int64, delta int64) {
	_, err := s.cache.Increment(ctx, cache.PostCommentCountKey(postID), delta)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("comment count adjustment failed",
			zap.Int64("post_id", postID),
			zap.Error(err))
	}
}

func (s *Service) appendChange(ctx context.Context, change notify.Change) {
	if err := s.broker.AppendChange(ctx, change); err != nil {
		s.log.Warn("comment change append failed",
			zap.Int64("post_id", change.PostID),
			zap.Int64("comment_id", change.CommentID),
			zap.Error(err))
	}
}
