// Verification HTTP handlers.
//
// This file exposes REST endpoints for the on-site verification flow:
//   - POST /posts/{id}/verification            (submit an admitted report)
//   - GET  /posts/{id}/verification/reports    (list reports)
//   - POST /posts/{id}/verification/complete   (reviewer marks verified)
//
// The proximity gate is re-run server-side against the stored property
// coordinates before a report is accepted. A post with no coordinates can
// never admit a submission.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edqorta/edqorta-backend/internal/geo"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// SubmitVerificationRequest is the JSON payload for a verification report.
type SubmitVerificationRequest struct {
	Latitude       *float64 `json:"latitude" binding:"required"`
	Longitude      *float64 `json:"longitude" binding:"required"`
	DetailsMatch   bool     `json:"details_match"`
	PhotosAccurate bool     `json:"photos_accurate"`
	EvidenceRef    string   `json:"evidence_ref" binding:"required"`
}

// SubmitVerification re-checks proximity and persists the report. The
// property moves to pending on success.
func (h *Handlers) SubmitVerification(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude, longitude, and evidence_ref required")
		return
	}
	if !req.DetailsMatch || !req.PhotosAccurate {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "all checklist items must be confirmed")
		return
	}

	p, err := h.feedSvc.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	var target *geo.LatLon
	if p.Latitude != nil && p.Longitude != nil {
		target = &geo.LatLon{Lat: *p.Latitude, Lon: *p.Longitude}
	}
	gate := geo.Check(&geo.LatLon{Lat: *req.Latitude, Lon: *req.Longitude}, target, h.VerifyThresholdKm)
	if !gate.Admitted {
		if gate.Err != nil {
			fail(c, http.StatusUnprocessableEntity, ErrCodeLocationMissing, "property has no recorded location")
			return
		}
		fail(c, http.StatusUnprocessableEntity, ErrCodeVerificationRejected, "submitter is not at the property location")
		return
	}

	rep, err := h.verifySvc.Submit(c.Request.Context(), services.ReportInput{
		PropertyID:     id,
		AgentID:        userID(c),
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		DistanceKm:     gate.DistanceKm,
		DetailsMatch:   req.DetailsMatch,
		PhotosAccurate: req.PhotosAccurate,
		EvidenceRef:    req.EvidenceRef,
	})
	switch {
	case errors.Is(err, services.ErrInvalidReport):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrVerificationPending):
		fail(c, http.StatusConflict, ErrCodeVerificationPending, "verification already pending")
		return
	case errors.Is(err, services.ErrPropertyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, rep)
}

// ListVerificationReports lists the reports filed against a post.
func (h *Handlers) ListVerificationReports(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	reports, err := h.verifySvc.Reports(c.Request.Context(), id)
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"reports": reports})
}

// CompleteVerification marks a pending post verified on behalf of the
// current user acting as reviewer.
func (h *Handlers) CompleteVerification(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a UUID")
		return
	}

	p, err := h.verifySvc.Complete(c.Request.Context(), id, userID(c))
	if errors.Is(err, services.ErrPropertyNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "property not found or not pending")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}
