// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// VerificationReport model and the property verification state machine.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

// ErrAlreadyPending indicates the property already has an in-flight or
// completed verification and cannot accept another submission.
var ErrAlreadyPending = errors.New("verification already pending")

// CreateVerificationReport persists an admitted submission and flips the
// property from unverified to pending in one transaction. The conditional
// update is the guard: if the property is missing the transaction fails
// with ErrNotFound, and if it is already pending or verified it fails with
// ErrAlreadyPending.
func CreateVerificationReport(ctx context.Context, db *gorm.DB, r *domain.VerificationReport) (*domain.VerificationReport, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Property{}).
			Where("id = ? AND verification_status = ?", r.PropertyID, domain.VerificationUnverified).
			Update("verification_status", domain.VerificationPending)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.Property{}).Where("id = ?", r.PropertyID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrAlreadyPending
		}
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetVerificationReport fetches a report by ID, or ErrNotFound.
func GetVerificationReport(ctx context.Context, db *gorm.DB, id string) (*domain.VerificationReport, error) {
	var r domain.VerificationReport
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListVerificationReports returns the reports filed against a property,
// most recent first.
func ListVerificationReports(ctx context.Context, db *gorm.DB, propertyID string) ([]domain.VerificationReport, error) {
	var out []domain.VerificationReport
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CompleteVerification marks a pending property verified and records the
// verifying agent. Used by the moderation flow once a report is reviewed.
func CompleteVerification(ctx context.Context, db *gorm.DB, propertyID, verifierID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ? AND verification_status = ?", propertyID, domain.VerificationPending).
		Updates(map[string]any{
			"verification_status": domain.VerificationVerified,
			"verifier_id":         verifierID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
