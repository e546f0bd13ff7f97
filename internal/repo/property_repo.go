// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Property,
// PropertyLike, and Comment models.
//
// Like rows are the source of truth for the per-property Likes counter; the
// counter is adjusted in the same transaction as the row insert/delete so a
// crash cannot leave the two out of step.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

// CreateProperty inserts a new Property row. The caller fills in the listing
// fields; ID and CreatedAt are assigned here.
func CreateProperty(ctx context.Context, db *gorm.DB, p *domain.Property) (*domain.Property, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.VerificationStatus == "" {
		p.VerificationStatus = domain.VerificationUnverified
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProperty fetches a property with its lister preloaded, or ErrNotFound.
func GetProperty(ctx context.Context, db *gorm.DB, id string) (*domain.Property, error) {
	var p domain.Property
	err := db.WithContext(ctx).
		Preload("Lister").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProperty soft-deletes a property, enforcing lister ownership.
// Returns ErrNotFound when the property is missing or owned by someone else.
func DeleteProperty(ctx context.Context, db *gorm.DB, id, listerID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND lister_id = ?", id, listerID).
		Delete(&domain.Property{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountProperties returns the total number of live feed posts.
func CountProperties(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Property{}).Count(&total).Error
	return total, err
}

// ListPropertiesPage returns a page of the feed ordered by creation time
// descending, with listers preloaded. Use CountProperties to obtain the
// total for pagination metadata.
func ListPropertiesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Property, error) {
	var out []domain.Property
	err := db.WithContext(ctx).
		Preload("Lister").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateLike inserts a (property, user) like row and increments the
// denormalized counter in one transaction. Returns ErrDuplicate if the user
// already liked the property.
func CreateLike(ctx context.Context, db *gorm.DB, propertyID, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := &domain.PropertyLike{
			ID:         uuid.NewString(),
			PropertyID: propertyID,
			UserID:     userID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.Create(l).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		res := tx.Model(&domain.Property{}).
			Where("id = ?", propertyID).
			UpdateColumn("likes", gorm.Expr("likes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteLike removes the (property, user) like row and decrements the
// counter, clamping at zero. Returns ErrNotFound if the row did not exist.
func DeleteLike(ctx context.Context, db *gorm.DB, propertyID, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("property_id = ? AND user_id = ?", propertyID, userID).
			Delete(&domain.PropertyLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&domain.Property{}).
			Where("id = ?", propertyID).
			UpdateColumn("likes", gorm.Expr("MAX(likes - 1, 0)")).Error
	})
}

// HasLiked reports whether userID has liked propertyID.
func HasLiked(ctx context.Context, db *gorm.DB, propertyID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PropertyLike{}).
		Where("property_id = ? AND user_id = ?", propertyID, userID).
		Count(&n).Error
	return n > 0, err
}

// CreateComment inserts a comment on a property.
func CreateComment(ctx context.Context, db *gorm.DB, propertyID, userID, text string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		UserID:     userID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns a property's comments in ascending creation order
// with authors preloaded.
func ListComments(ctx context.Context, db *gorm.DB, propertyID string, offset, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Preload("User").
		Where("property_id = ?", propertyID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountComments returns the number of comments on a property.
func CountComments(ctx context.Context, db *gorm.DB, propertyID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("property_id = ?", propertyID).
		Count(&total).Error
	return total, err
}
