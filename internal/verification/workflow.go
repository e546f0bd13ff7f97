package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/edqorta/edqorta-backend/internal/engage"
	"github.com/edqorta/edqorta-backend/internal/geo"
)

// Workflow-level errors.
var (
	// ErrChecklistIncomplete means the agent has not confirmed every
	// checklist item.
	ErrChecklistIncomplete = errors.New("verification checklist incomplete")

	// ErrEvidenceMissing means no evidence photo was captured.
	ErrEvidenceMissing = errors.New("verification evidence missing")

	// ErrNotAdmitted means the submitter is outside the proximity
	// threshold of the property.
	ErrNotAdmitted = errors.New("submitter is not at the property location")

	// ErrInvalidTransition means the submission is not in a state that
	// permits the requested step.
	ErrInvalidTransition = errors.New("invalid submission state transition")
)

// Status is the lifecycle state of a verification submission.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusLocationChecked Status = "location_checked"
	StatusSubmitted       Status = "submitted"
	StatusRejected        Status = "rejected"
)

// Checklist captures the agent's on-site confirmations. Every field must
// be true before a submission is accepted.
type Checklist struct {
	DetailsMatch   bool
	PhotosAccurate bool
}

// Complete reports whether every checklist item is confirmed.
func (c Checklist) Complete() bool { return c.DetailsMatch && c.PhotosAccurate }

// Submission is a verification report in progress. The workflow owns its
// state transitions; callers fill in the identifying fields, checklist
// and evidence, then hand it to Submit.
type Submission struct {
	PropertyID  string
	AgentID     string
	Checklist   Checklist
	EvidenceRef string

	Status   Status
	Position geo.LatLon
	Gate     geo.Result
}

// NewSubmission starts a draft submission for the given property and agent.
func NewSubmission(propertyID, agentID string) *Submission {
	return &Submission{PropertyID: propertyID, AgentID: agentID, Status: StatusDraft}
}

// Issuer is the slice of the mutation coordinator the workflow needs.
type Issuer interface {
	Issue(ctx context.Context, spec engage.IntentSpec) (*engage.Intent, error)
}

// BuildIntent produces the mutation intent for an admitted submission.
// The session layer supplies it so the workflow stays independent of
// aggregate shapes; it receives the submitter's measured position and
// the gate result for inclusion in the persisted report.
type BuildIntent func(pos geo.LatLon, gate geo.Result) engage.IntentSpec

// Workflow runs the submit-verification sequence: checklist and evidence
// validation, geolocation, the proximity gate, and only on admission the
// issuance of the mutation intent. A rejected gate never reaches the
// coordinator.
type Workflow struct {
	Locator     Locator
	Issuer      Issuer
	ThresholdKm float64
	Logger      zerolog.Logger
}

// Submit drives a draft submission to either StatusSubmitted or
// StatusRejected. On success it returns the issued intent; the gate
// result is recorded on the submission either way.
func (w *Workflow) Submit(ctx context.Context, sub *Submission, target *geo.LatLon, build BuildIntent) (*engage.Intent, error) {
	ctx, span := otel.Tracer("verification/workflow").Start(ctx, "Workflow.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("property.id", sub.PropertyID))

	if sub.Status != StatusDraft {
		return nil, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, sub.Status)
	}
	if !sub.Checklist.Complete() {
		return nil, ErrChecklistIncomplete
	}
	if sub.EvidenceRef == "" {
		return nil, ErrEvidenceMissing
	}

	pos, err := w.Locator.CurrentPosition(ctx)
	if err != nil {
		w.Logger.Warn().Err(err).Str("property_id", sub.PropertyID).Msg("geolocation failed")
		return nil, err
	}
	sub.Position = pos

	sub.Gate = geo.Check(&pos, target, w.ThresholdKm)
	if !sub.Gate.Admitted {
		sub.Status = StatusRejected
		if sub.Gate.Err != nil {
			return nil, sub.Gate.Err
		}
		w.Logger.Info().
			Str("property_id", sub.PropertyID).
			Float64("distance_km", sub.Gate.DistanceKm).
			Float64("threshold_km", w.ThresholdKm).
			Msg("verification gate rejected")
		return nil, fmt.Errorf("%w: %.2f km away", ErrNotAdmitted, sub.Gate.DistanceKm)
	}
	sub.Status = StatusLocationChecked

	intent, err := w.Issuer.Issue(ctx, build(pos, sub.Gate))
	if err != nil {
		sub.Status = StatusRejected
		return nil, err
	}
	sub.Status = StatusSubmitted
	return intent, nil
}
