// Feed HTTP handlers.
//
// This file exposes REST endpoints for feed posts:
//   - GET    /feed             (list, paginated, ETag support)
//   - POST   /posts            (create)
//   - GET    /posts/{id}       (fetch)
//   - DELETE /posts/{id}       (delete, owner only)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// CreatePostRequest is the JSON payload for creating a feed post.
type CreatePostRequest struct {
	Type          string   `json:"type" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Location      string   `json:"location"`
	Price         *float64 `json:"price"`
	PriceInterval string   `json:"price_interval"`
	Beds          *int     `json:"beds"`
	Baths         *int     `json:"baths"`
	ListingType   string   `json:"listing_type"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

// ListFeedResponse wraps a page of posts and pagination information.
type ListFeedResponse struct {
	Posts      []domain.Property `json:"posts"`
	Pagination Pagination        `json:"pagination"`
}

// ListFeed returns a page of the feed, newest first. Supports weak ETag via
// If-None-Match and may return 304.
func (h *Handlers) ListFeed(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, isConcrete := h.feedSvc.(*services.FeedService); isConcrete {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.FeedStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"feed:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.feedSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListFeedResponse{
		Posts:      items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// CreatePost creates a feed post owned by the current user.
func (h *Handlers) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.feedSvc.CreatePost(c.Request.Context(), userID(c), services.PostInput{
		Type:          req.Type,
		Description:   req.Description,
		Location:      req.Location,
		Price:         req.Price,
		PriceInterval: req.PriceInterval,
		Beds:          req.Beds,
		Baths:         req.Baths,
		ListingType:   req.ListingType,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	})
	switch {
	case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong), errors.Is(err, services.ErrInvalidPost):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	c.Header("Location", "/api/v1/posts/"+url.PathEscape(p.ID))
	ok(c, http.StatusCreated, p)
}

// GetPost fetches a single post by ID.
func (h *Handlers) GetPost(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	p, err := h.feedSvc.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePost removes a post owned by the current user.
func (h *Handlers) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	err := h.feedSvc.DeletePost(c.Request.Context(), id, userID(c))
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	case errors.Is(err, services.ErrNotPostOwner):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not the post owner")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
