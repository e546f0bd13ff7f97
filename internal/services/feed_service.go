// Package services – FeedService
//
// This file implements FeedService, which owns the lifecycle of feed posts:
// property listings and plain social posts. It validates type-specific
// required fields on creation, enforces lister ownership on deletion, and
// keeps the author's denormalized posts counter in step.

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

// PostInput carries the caller-supplied fields for a new feed post.
// Listing fields are required when Type is domain.PostTypeProperty and
// ignored otherwise.
type PostInput struct {
	Type          string
	Description   string
	Location      string
	Price         *float64
	PriceInterval string
	Beds          *int
	Baths         *int
	ListingType   string
	Latitude      *float64
	Longitude     *float64
}

// FeedService coordinates feed post creation, deletion, and listing.
type FeedService struct {
	DB *gorm.DB

	// Optional guards
	MaxDescriptionRunes int
}

// CreatePost validates the input and persists a feed post owned by listerID.
func (s *FeedService) CreatePost(ctx context.Context, listerID string, in PostInput) (*domain.Property, error) {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "CreatePost",
		trace.WithAttributes(
			attribute.String("lister.id", listerID),
			attribute.String("post.type", in.Type),
		),
	)
	defer span.End()

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, ErrEmptyText
	}
	if s.MaxDescriptionRunes > 0 && utf8.RuneCountInString(in.Description) > s.MaxDescriptionRunes {
		return nil, ErrTooLong
	}

	switch in.Type {
	case domain.PostTypeProperty:
		if in.Price == nil || strings.TrimSpace(in.Location) == "" {
			return nil, ErrInvalidPost
		}
		if in.ListingType != "rent" && in.ListingType != "sale" {
			return nil, ErrInvalidPost
		}
	case domain.PostTypeNormal:
		// Plain posts carry no listing fields.
		in.Price, in.Beds, in.Baths = nil, nil, nil
		in.PriceInterval, in.ListingType = "", ""
		in.Latitude, in.Longitude = nil, nil
	default:
		return nil, ErrInvalidPost
	}

	if _, err := repo.GetUser(ctx, s.DB, listerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	p := &domain.Property{
		ListerID:      listerID,
		PostType:      in.Type,
		Description:   in.Description,
		Location:      in.Location,
		Price:         in.Price,
		PriceInterval: in.PriceInterval,
		Beds:          in.Beds,
		Baths:         in.Baths,
		ListingType:   in.ListingType,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		IsAvailable:   true,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateProperty(ctx, tx, p); err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", listerID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return repo.GetProperty(ctx, s.DB, p.ID)
}

// DeletePost removes a post, enforcing lister ownership, and decrements the
// author's posts counter. It distinguishes a missing post from one owned by
// another user so the handler can surface the right status.
func (s *FeedService) DeletePost(ctx context.Context, id, userID string) error {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "DeletePost",
		trace.WithAttributes(
			attribute.String("property.id", id),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	p, err := repo.GetProperty(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPropertyNotFound
	}
	if err != nil {
		return err
	}
	if p.ListerID != userID {
		return ErrNotPostOwner
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteProperty(ctx, tx, id, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPropertyNotFound
			}
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", userID).
			UpdateColumn("posts_count", gorm.Expr("MAX(posts_count - 1, 0)")).Error
	})
}

// Get fetches a single post by ID.
func (s *FeedService) Get(ctx context.Context, id string) (*domain.Property, error) {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("property.id", id)),
	)
	defer span.End()

	p, err := repo.GetProperty(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPropertyNotFound
	}
	return p, err
}

// ListPage returns a page of the feed, newest first, plus the total count.
func (s *FeedService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Property, int64, error) {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
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

	total, err := repo.CountProperties(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Property{}, 0, nil
	}

	items, err := repo.ListPropertiesPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
