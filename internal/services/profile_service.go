// Package services – ProfileService
//
// This file implements ProfileService, which owns user profile reads and
// partial profile updates. Updates are merges: only the fields the caller
// supplies are written, everything else keeps its stored value.

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

// ProfileUpdate carries the caller-supplied partial profile changes.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name      *string
	Avatar    *string
	Bio       *string
	Location  *string
	IsPrivate *bool
}

// ProfileService coordinates user profile reads and updates.
type ProfileService struct {
	DB *gorm.DB

	// Optional guards
	MaxBioRunes int
}

// Get fetches a user profile by ID.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.User, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Update applies a partial profile update and returns the refreshed user.
func (s *ProfileService) Update(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyText
		}
		fields["name"] = name
	}
	if in.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if s.MaxBioRunes > 0 && utf8.RuneCountInString(bio) > s.MaxBioRunes {
			return nil, ErrTooLong
		}
		fields["bio"] = bio
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.IsPrivate != nil {
		fields["is_private"] = *in.IsPrivate
	}

	u, err := repo.UpdateUserProfile(ctx, s.DB, id, fields)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
