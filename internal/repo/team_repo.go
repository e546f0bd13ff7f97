// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SearchTeam, TeamMember, SharedProperty, and TeamComment models.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

// CreateTeam inserts a search team with its member rows and a dedicated
// conversation, all in one transaction. The creator is always a member.
func CreateTeam(ctx context.Context, db *gorm.DB, name, creatorID string, memberIDs []string) (*domain.SearchTeam, error) {
	team := &domain.SearchTeam{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := &domain.Conversation{
			ID:        uuid.NewString(),
			TeamID:    &team.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		team.ConversationID = conv.ID
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, uid := range append([]string{creatorID}, memberIDs...) {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			m := &domain.TeamMember{
				ID:        uuid.NewString(),
				TeamID:    team.ID,
				UserID:    uid,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			p := &domain.ConversationParticipant{
				ID:             uuid.NewString(),
				ConversationID: conv.ID,
				UserID:         uid,
				CreatedAt:      time.Now().UTC(),
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// GetTeam fetches a team by ID, or ErrNotFound.
func GetTeam(ctx context.Context, db *gorm.DB, id string) (*domain.SearchTeam, error) {
	var t domain.SearchTeam
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// IsTeamMember reports whether userID belongs to the team.
func IsTeamMember(ctx context.Context, db *gorm.DB, teamID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&n).Error
	return n > 0, err
}

// CreateSharedProperty shares a listing into a team. Returns ErrDuplicate
// if the listing was already shared there.
func CreateSharedProperty(ctx context.Context, db *gorm.DB, teamID, propertyID, sharerID string) (*domain.SharedProperty, error) {
	sp := &domain.SharedProperty{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		PropertyID: propertyID,
		SharerID:   sharerID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sp).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return sp, nil
}

// GetSharedProperty fetches a shared listing by ID, or ErrNotFound.
func GetSharedProperty(ctx context.Context, db *gorm.DB, id string) (*domain.SharedProperty, error) {
	var sp domain.SharedProperty
	if err := db.WithContext(ctx).Where("id = ?", id).First(&sp).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

// CreateTeamComment adds a member's note to a shared listing.
func CreateTeamComment(ctx context.Context, db *gorm.DB, sharedPropertyID, authorID, text string) (*domain.TeamComment, error) {
	c := &domain.TeamComment{
		ID:               uuid.NewString(),
		SharedPropertyID: sharedPropertyID,
		AuthorID:         authorID,
		Text:             text,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListTeamComments returns a shared listing's notes in ascending creation
// order with authors preloaded.
func ListTeamComments(ctx context.Context, db *gorm.DB, sharedPropertyID string, offset, limit int) ([]domain.TeamComment, error) {
	var out []domain.TeamComment
	err := db.WithContext(ctx).
		Preload("Author").
		Where("shared_property_id = ?", sharedPropertyID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
