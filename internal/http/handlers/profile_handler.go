// Profile HTTP handlers.
//
// This file exposes REST endpoints for user profiles:
//   - GET   /users/{id}   (fetch)
//   - PATCH /profile      (partial update of the current user's profile)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edqorta/edqorta-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	IsPrivate *bool   `json:"is_private"`
}

// GetUser fetches a user profile by ID.
func (h *Handlers) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}

	u, err := h.profSvc.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrUserNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateProfile applies a partial update to the current user's profile and
// returns the refreshed record.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.profSvc.Update(c.Request.Context(), userID(c), services.ProfileUpdate{
		Name:      req.Name,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
		Location:  req.Location,
		IsPrivate: req.IsPrivate,
	})
	switch {
	case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
