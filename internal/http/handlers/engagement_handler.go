// Engagement HTTP handlers.
//
// This file exposes REST endpoints for likes, follows, and comments:
//   - POST /posts/{id}/like        (toggle like)
//   - POST /users/{id}/follow      (toggle follow)
//   - POST /posts/{id}/comments    (add comment)
//   - GET  /posts/{id}/comments    (list comments, paginated)
//
// Toggle endpoints are self-inverse: each call flips the current state and
// returns the refreshed counters, so clients reconcile against server truth
// rather than assuming their optimistic guess held.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// ToggleLikeResponse returns the refreshed property and the resulting state.
type ToggleLikeResponse struct {
	Property *domain.Property `json:"property"`
	Liked    bool             `json:"liked"`
}

// ToggleFollowResponse returns the refreshed followee and the resulting state.
type ToggleFollowResponse struct {
	User      *domain.User `json:"user"`
	Following bool         `json:"following"`
}

// AddCommentRequest is the JSON payload for commenting on a post.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListCommentsResponse wraps a page of comments and pagination information.
type ListCommentsResponse struct {
	Comments   []domain.Comment `json:"comments"`
	Pagination Pagination       `json:"pagination"`
}

// ToggleLike flips the current user's like on a post.
func (h *Handlers) ToggleLike(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	p, liked, err := h.engageSvc.ToggleLike(c.Request.Context(), id, userID(c))
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ToggleLikeResponse{Property: p, Liked: liked})
}

// ToggleFollow flips whether the current user follows the target user.
func (h *Handlers) ToggleFollow(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}

	u, following, err := h.engageSvc.ToggleFollow(c.Request.Context(), userID(c), id)
	switch {
	case errors.Is(err, services.ErrSelfFollow):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot follow yourself")
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ToggleFollowResponse{User: u, Following: following})
}

// AddComment appends a public comment to a post.
func (h *Handlers) AddComment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	cm, err := h.engageSvc.AddComment(c.Request.Context(), id, userID(c), req.Text)
	switch {
	case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListComments returns a page of a post's comments.
func (h *Handlers) ListComments(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.engageSvc.ListComments(c.Request.Context(), id, page, pageSize)
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{
		Comments:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}
