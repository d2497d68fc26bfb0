// Package handlers exposes the comment core over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/a1nn1997/realtime-blog-backend/internal/comments"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/api"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/auth"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/httpserver"
)

type deleteCommentResponse struct {
	ID int64 `json:"id"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// writeCommentError maps a service error onto the response envelope. Codes
// are stable; clients branch on them rather than on message text.
func writeCommentError(w http.ResponseWriter, err error, requestID string) {
	var verr *comments.ValidationError
	switch {
	case errors.As(err, &verr):
		api.BadRequest(w, "VALIDATION_ERROR", verr.Reason, requestID, nil)
	case errors.Is(err, comments.ErrRateLimited):
		api.RateLimited(w, "RATE_LIMITED", "Rate limit exceeded, please try again later", requestID, nil)
	case errors.Is(err, comments.ErrPostNotFound):
		api.NotFound(w, "POST_NOT_FOUND", "Post not found", requestID)
	case errors.Is(err, comments.ErrParentNotFound):
		api.NotFound(w, "PARENT_NOT_FOUND", "Parent comment not found", requestID)
	case errors.Is(err, comments.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "Comment not found", requestID)
	case errors.Is(err, comments.ErrMaxDepth):
		api.BadRequest(w, "MAX_DEPTH", "Maximum nesting depth reached for comments", requestID, nil)
	case errors.Is(err, comments.ErrUnauthorized):
		api.Unauthorized(w, "UNAUTHORIZED", "Not authorized to perform this action", requestID)
	default:
		api.Internal(w, requestID)
	}
}

func postIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	return id, err == nil
}

// CreateComment handles POST /api/posts/{id}/comments
func CreateComment(svc *comments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		actorID, ok := auth.UserUUID(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", rid)
			return
		}

		postID, ok := postIDParam(r)
		if !ok {
			api.BadRequest(w, "BAD_REQUEST", "post id must be an integer", rid, nil)
			return
		}

		var req comments.CreateCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "BAD_REQUEST", "invalid JSON", rid, nil)
			return
		}

		created, err := svc.Create(r.Context(), postID, actorID, req)
		if err != nil {
			writeCommentError(w, err, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetPostComments handles GET /api/posts/{id}/comments?page=N
func GetPostComments(svc *comments.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		postID, ok := postIDParam(r)
		if !ok {
			api.BadRequest(w, "BAD_REQUEST", "post id must be an integer", rid, nil)
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}

		tree, err := svc.GetPostComments(r.Context(), postID, page)
		if err != nil {
			writeCommentError(w, err, rid)
			return
		}

		// The count is decoration on the listing; a count failure degrades
		// to zero rather than failing an otherwise good page.
		total, err := svc.GetCommentCount(r.Context(), postID)
		if err != nil {
			log.Error("comment count lookup failed",
				zap.Int64("post_id", postID),
				zap.Error(err))
			total = 0
		}

		api.WriteJSON(w, http.StatusOK, comments.CommentsListResponse{
			Comments:   tree,
			TotalCount: total,
		})
	}
}

// DeleteComment handles DELETE /api/comments/{id}
func DeleteComment(svc *comments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		actorID, ok := auth.UserUUID(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", rid)
			return
		}

		commentID, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
		if err != nil {
			api.BadRequest(w, "BAD_REQUEST", "comment id must be an integer", rid, nil)
			return
		}

		id, err := svc.Delete(r.Context(), commentID, actorID, auth.IsAdmin(r.Context()))
		if err != nil {
			writeCommentError(w, err, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, deleteCommentResponse{ID: id})
	}
}

// GetCommentCount handles GET /api/posts/{id}/comments/count
func GetCommentCount(svc *comments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		postID, ok := postIDParam(r)
		if !ok {
			api.BadRequest(w, "BAD_REQUEST", "post id must be an integer", rid, nil)
			return
		}

		n, err := svc.GetCommentCount(r.Context(), postID)
		if err != nil {
			writeCommentError(w, err, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}
