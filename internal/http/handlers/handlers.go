// Handler wiring and shared helpers.
//
// Handlers are transport-thin: they validate input, call application services
// through narrow interfaces, and translate results into HTTP responses.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/services"
	"github.com/edqorta/edqorta-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// FeedService defines feed post lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type FeedService interface {
	// CreatePost validates and persists a feed post owned by listerID.
	CreatePost(ctx context.Context, listerID string, in services.PostInput) (*domain.Property, error)
	// DeletePost removes a post, enforcing lister ownership.
	DeletePost(ctx context.Context, id, userID string) error
	// Get fetches a single post by ID.
	Get(ctx context.Context, id string) (*domain.Property, error)
	// ListPage returns a page of the feed and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Property, int64, error)
}

// EngagementService defines like/follow/comment operations.
type EngagementService interface {
	// ToggleLike flips the like state and returns the refreshed property.
	ToggleLike(ctx context.Context, propertyID, userID string) (*domain.Property, bool, error)
	// ToggleFollow flips the follow state and returns the refreshed followee.
	ToggleFollow(ctx context.Context, followerID, followeeID string) (*domain.User, bool, error)
	// AddComment persists a public comment on a property.
	AddComment(ctx context.Context, propertyID, userID, text string) (*domain.Comment, error)
	// ListComments returns a page of a property's comments and the total.
	ListComments(ctx context.Context, propertyID string, page, pageSize int) ([]domain.Comment, int64, error)
}

// MessagingService defines conversation and team collaboration operations.
type MessagingService interface {
	// StartConversation opens a direct thread for the creator and participants.
	StartConversation(ctx context.Context, creatorID string, participantIDs []string, propertyID *string) (*domain.Conversation, error)
	// SendMessage appends a user message to a conversation.
	SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error)
	// ListMessagesPage returns a page of a conversation's messages.
	ListMessagesPage(ctx context.Context, conversationID, userID string, page, pageSize int) ([]domain.Message, int64, error)
	// CreateTeam creates a search team with its conversation and members.
	CreateTeam(ctx context.Context, creatorID, name string, memberIDs []string) (*domain.SearchTeam, error)
	// ShareProperty shares a listing into a team.
	ShareProperty(ctx context.Context, teamID, propertyID, userID string) (*domain.SharedProperty, error)
	// AddTeamComment appends a member note to a shared listing.
	AddTeamComment(ctx context.Context, sharedPropertyID, authorID, text string) (*domain.TeamComment, error)
	// ListTeamComments returns the notes on a shared listing.
	ListTeamComments(ctx context.Context, sharedPropertyID, userID string, page, pageSize int) ([]domain.TeamComment, error)
}

// ProfileService defines profile read/update operations.
type ProfileService interface {
	// Get fetches a user profile by ID.
	Get(ctx context.Context, id string) (*domain.User, error)
	// Update applies a partial profile update.
	Update(ctx context.Context, id string, in services.ProfileUpdate) (*domain.User, error)
}

// VerificationService defines verification report operations.
type VerificationService interface {
	// Submit stores an admitted report and flips the property to pending.
	Submit(ctx context.Context, in services.ReportInput) (*domain.VerificationReport, error)
	// Complete marks a pending property verified.
	Complete(ctx context.Context, propertyID, verifierID string) (*domain.Property, error)
	// Reports lists the reports filed against a property.
	Reports(ctx context.Context, propertyID string) ([]domain.VerificationReport, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for feed, engagement, messaging,
// profiles, and verification. It depends on abstract service interfaces to
// keep transport concerns separate from business logic.
type Handlers struct {
	feedSvc   FeedService
	engageSvc EngagementService
	msgSvc    MessagingService
	profSvc   ProfileService
	verifySvc VerificationService

	// VerifyThresholdKm is the proximity admission threshold applied when
	// re-checking verification submissions server-side.
	VerifyThresholdKm float64
}

// New constructs a Handlers instance bound to the given services.
func New(feedSvc FeedService, engageSvc EngagementService, msgSvc MessagingService, profSvc ProfileService, verifySvc VerificationService, verifyThresholdKm float64) *Handlers {
	return &Handlers{
		feedSvc:           feedSvc,
		engageSvc:         engageSvc,
		msgSvc:            msgSvc,
		profSvc:           profSvc,
		verifySvc:         verifySvc,
		VerifyThresholdKm: verifyThresholdKm,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginationFor computes the metadata block for a page of total items.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
