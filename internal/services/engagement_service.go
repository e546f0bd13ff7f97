// Package services – EngagementService
//
// This file implements EngagementService, the application-level component
// that owns likes, follows, and public comments. Toggle operations are
// expressed against the stored join rows, never against the denormalized
// counters directly, so repeated or concurrent toggles converge on the
// row's presence.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include property/user identifiers.

package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EngagementService coordinates likes, follows, and comments.
type EngagementService struct {
	DB *gorm.DB

	// Optional guards
	MaxCommentRunes int
}

// ToggleLike flips the like state of (propertyID, userID) and returns the
// refreshed property plus the resulting liked flag. A toggle that races a
// duplicate insert or a missing row resolves to the state the row ended in.
func (s *EngagementService) ToggleLike(ctx context.Context, propertyID, userID string) (*domain.Property, bool, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "ToggleLike",
		trace.WithAttributes(
			attribute.String("property.id", propertyID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	liked, err := repo.HasLiked(ctx, s.DB, propertyID, userID)
	if err != nil {
		return nil, false, err
	}

	if liked {
		if err := repo.DeleteLike(ctx, s.DB, propertyID, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, false, err
		}
		liked = false
	} else {
		switch err := repo.CreateLike(ctx, s.DB, propertyID, userID); {
		case err == nil, errors.Is(err, repo.ErrDuplicate):
			liked = true
		case errors.Is(err, repo.ErrNotFound):
			return nil, false, ErrPropertyNotFound
		default:
			return nil, false, err
		}
	}

	p, err := repo.GetProperty(ctx, s.DB, propertyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, ErrPropertyNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return p, liked, nil
}

// ToggleFollow flips whether followerID follows followeeID and returns the
// refreshed followee plus the resulting following flag.
func (s *EngagementService) ToggleFollow(ctx context.Context, followerID, followeeID string) (*domain.User, bool, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "ToggleFollow",
		trace.WithAttributes(
			attribute.String("follower.id", followerID),
			attribute.String("followee.id", followeeID),
		),
	)
	defer span.End()

	if followerID == followeeID {
		return nil, false, ErrSelfFollow
	}

	following, err := repo.IsFollowing(ctx, s.DB, followerID, followeeID)
	if err != nil {
		return nil, false, err
	}

	if following {
		if err := repo.DeleteFollow(ctx, s.DB, followerID, followeeID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, false, err
		}
		following = false
	} else {
		switch err := repo.CreateFollow(ctx, s.DB, followerID, followeeID); {
		case err == nil, errors.Is(err, repo.ErrDuplicate):
			following = true
		case errors.Is(err, repo.ErrNotFound):
			return nil, false, ErrUserNotFound
		default:
			return nil, false, err
		}
	}

	u, err := repo.GetUser(ctx, s.DB, followeeID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, ErrUserNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return u, following, nil
}

// HasLiked reports whether userID has liked propertyID.
func (s *EngagementService) HasLiked(ctx context.Context, propertyID, userID string) (bool, error) {
	return repo.HasLiked(ctx, s.DB, propertyID, userID)
}

// IsFollowing reports whether followerID currently follows followeeID.
func (s *EngagementService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return repo.IsFollowing(ctx, s.DB, followerID, followeeID)
}

// AddComment validates and persists a public comment on a property.
func (s *EngagementService) AddComment(ctx context.Context, propertyID, userID, text string) (*domain.Comment, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "AddComment",
		trace.WithAttributes(
			attribute.String("property.id", propertyID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxCommentRunes > 0 && utf8.RuneCountInString(text) > s.MaxCommentRunes {
		return nil, ErrTooLong
	}

	if _, err := repo.GetProperty(ctx, s.DB, propertyID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	return repo.CreateComment(ctx, s.DB, propertyID, userID, text)
}

// ListComments returns paginated comments for a property.
func (s *EngagementService) ListComments(ctx context.Context, propertyID string, page, pageSize int) ([]domain.Comment, int64, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "ListComments",
		trace.WithAttributes(
			attribute.String("property.id", propertyID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := repo.GetProperty(ctx, s.DB, propertyID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrPropertyNotFound
		}
		return nil, 0, err
	}

	total, err := repo.CountComments(ctx, s.DB, propertyID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Comment{}, 0, nil
	}

	items, err := repo.ListComments(ctx, s.DB, propertyID, offset, pageSize)
	return items, total, err
}
