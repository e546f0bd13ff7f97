// Package services – VerificationService
//
// This file implements VerificationService, the server-side half of the
// on-site verification flow. It persists admitted reports and moves the
// property through the unverified -> pending -> verified state machine.
// The proximity gate itself runs client-side before a report ever reaches
// this service; DistanceKm arrives pre-computed for audit.

package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReportInput carries an admitted verification submission.
type ReportInput struct {
	PropertyID     string
	AgentID        string
	Latitude       float64
	Longitude      float64
	DistanceKm     float64
	DetailsMatch   bool
	PhotosAccurate bool
	EvidenceRef    string
}

// VerificationService persists verification reports and drives the
// property verification state machine.
type VerificationService struct {
	DB *gorm.DB
}

// Submit stores an admitted report and flips the property to pending.
// A property that is already pending or verified yields
// ErrVerificationPending; an incomplete checklist is rejected here as a
// defense even though the workflow validates it first.
func (s *VerificationService) Submit(ctx context.Context, in ReportInput) (*domain.VerificationReport, error) {
	tr := otel.Tracer("services/VerificationService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("property.id", in.PropertyID),
			attribute.String("user.id", in.AgentID),
		),
	)
	defer span.End()

	if !in.DetailsMatch || !in.PhotosAccurate || in.EvidenceRef == "" {
		return nil, ErrInvalidReport
	}

	if _, err := repo.GetUser(ctx, s.DB, in.AgentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r := &domain.VerificationReport{
		PropertyID:     in.PropertyID,
		AgentID:        in.AgentID,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		DistanceKm:     in.DistanceKm,
		DetailsMatch:   in.DetailsMatch,
		PhotosAccurate: in.PhotosAccurate,
		EvidenceRef:    in.EvidenceRef,
	}
	rep, err := repo.CreateVerificationReport(ctx, s.DB, r)
	switch {
	case errors.Is(err, repo.ErrAlreadyPending):
		return nil, ErrVerificationPending
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrPropertyNotFound
	case err != nil:
		return nil, err
	}
	return rep, nil
}

// Complete marks a pending property verified on behalf of a reviewer.
func (s *VerificationService) Complete(ctx context.Context, propertyID, verifierID string) (*domain.Property, error) {
	tr := otel.Tracer("services/VerificationService")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithAttributes(attribute.String("property.id", propertyID)),
	)
	defer span.End()

	err := repo.CompleteVerification(ctx, s.DB, propertyID, verifierID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	return repo.GetProperty(ctx, s.DB, propertyID)
}

// Reports lists the reports filed against a property.
func (s *VerificationService) Reports(ctx context.Context, propertyID string) ([]domain.VerificationReport, error) {
	tr := otel.Tracer("services/VerificationService")
	ctx, span := tr.Start(ctx, "Reports",
		trace.WithAttributes(attribute.String("property.id", propertyID)),
	)
	defer span.End()

	if _, err := repo.GetProperty(ctx, s.DB, propertyID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return repo.ListVerificationReports(ctx, s.DB, propertyID)
}
