// Messaging HTTP handlers.
//
// This file exposes REST endpoints for conversations and search teams:
//   - POST /conversations/{id}/messages   (send)
//   - GET  /conversations/{id}/messages   (list, paginated)
//   - POST /teams                         (create team + conversation)
//   - POST /teams/{id}/properties         (share a listing into a team)
//   - POST /shared/{id}/comments          (add team note)
//   - GET  /shared/{id}/comments          (list team notes)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// SendMessageRequest is the JSON payload for sending a message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListMessagesResponse wraps a page of messages and pagination information.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// CreateTeamRequest is the JSON payload for creating a search team.
type CreateTeamRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=120"`
	MemberIDs []string `json:"member_ids"`
}

// SharePropertyRequest is the JSON payload for sharing a listing into a team.
type SharePropertyRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
}

// StartConversationRequest is the JSON payload for opening a direct thread.
type StartConversationRequest struct {
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1"`
	PropertyID     *string  `json:"property_id"`
}

// StartConversation opens a direct thread between the current user and the
// given participants.
func (h *Handlers) StartConversation(c *gin.Context) {
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "participant_ids required")
		return
	}

	conv, err := h.msgSvc.StartConversation(c.Request.Context(), userID(c), req.ParticipantIDs, req.PropertyID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case errors.Is(err, services.ErrPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, conv)
}

// SendMessage appends a user message to a conversation the current user
// participates in.
func (h *Handlers) SendMessage(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	m, err := h.msgSvc.SendMessage(c.Request.Context(), id, userID(c), req.Text)
	switch {
	case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, m)
}

// ListMessages returns a page of a conversation's messages.
func (h *Handlers) ListMessages(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.msgSvc.ListMessagesPage(c.Request.Context(), id, userID(c), page, pageSize)
	if errors.Is(err, services.ErrConversationNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// CreateTeam creates a search team owned by the current user.
func (h *Handlers) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1-120 chars)")
		return
	}

	t, err := h.msgSvc.CreateTeam(c.Request.Context(), userID(c), req.Name, req.MemberIDs)
	switch {
	case errors.Is(err, services.ErrEmptyText):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, t)
}

// ShareProperty shares a listing into a team the current user belongs to.
func (h *Handlers) ShareProperty(c *gin.Context) {
	teamID := c.Param("id")
	if _, err := uuid.Parse(teamID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a UUID")
		return
	}

	var req SharePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "property_id required")
		return
	}

	sp, err := h.msgSvc.ShareProperty(c.Request.Context(), teamID, req.PropertyID, userID(c))
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "team not found")
		return
	case errors.Is(err, services.ErrPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	case errors.Is(err, repo.ErrDuplicate):
		fail(c, http.StatusConflict, ErrCodeConflict, "property already shared")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, sp)
}

// AddTeamComment appends a note to a shared listing.
func (h *Handlers) AddTeamComment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shared property id must be a UUID")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	cm, err := h.msgSvc.AddTeamComment(c.Request.Context(), id, userID(c), req.Text)
	switch {
	case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrSharedPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "shared property not found")
		return
	case errors.Is(err, services.ErrTeamNotFound):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a team member")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListTeamComments returns the notes on a shared listing.
func (h *Handlers) ListTeamComments(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shared property id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	items, err := h.msgSvc.ListTeamComments(c.Request.Context(), id, userID(c), page, pageSize)
	switch {
	case errors.Is(err, services.ErrSharedPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "shared property not found")
		return
	case errors.Is(err, services.ErrTeamNotFound):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a team member")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"comments": items})
}
