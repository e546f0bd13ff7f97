package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

func newReport(propertyID, agentID string) *domain.VerificationReport {
	return &domain.VerificationReport{
		PropertyID:     propertyID,
		AgentID:        agentID,
		Latitude:       6.4475,
		Longitude:      3.4735,
		DistanceKm:     0.12,
		DetailsMatch:   true,
		PhotosAccurate: true,
		EvidenceRef:    "evidence/1.jpg",
	}
}

func TestCreateVerificationReport_FlipsUnverifiedToPending(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	lister := seedUser(t, db, "Lister", "lister")
	agent := seedUser(t, db, "Agent", "agent")
	p := seedProperty(t, db, lister.ID)

	r, err := CreateVerificationReport(ctx, db, newReport(p.ID, agent.ID))
	if err != nil {
		t.Fatalf("CreateVerificationReport: %v", err)
	}
	if r.ID == "" {
		t.Fatalf("report ID not assigned")
	}

	got, _ := GetProperty(ctx, db, p.ID)
	if got.VerificationStatus != domain.VerificationPending {
		t.Fatalf("verification_status = %q, want pending", got.VerificationStatus)
	}

	loaded, err := GetVerificationReport(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetVerificationReport: %v", err)
	}
	if loaded.DistanceKm != 0.12 || !loaded.DetailsMatch {
		t.Fatalf("report round-trip mismatch: %+v", loaded)
	}
}

func TestCreateVerificationReport_SecondSubmissionRejected(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	lister := seedUser(t, db, "Lister", "lister")
	agent := seedUser(t, db, "Agent", "agent")
	p := seedProperty(t, db, lister.ID)

	if _, err := CreateVerificationReport(ctx, db, newReport(p.ID, agent.ID)); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, err := CreateVerificationReport(ctx, db, newReport(p.ID, agent.ID)); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("second report: err = %v, want ErrAlreadyPending", err)
	}

	// The failed transaction must not have persisted a second row.
	reports, err := ListVerificationReports(ctx, db, p.ID)
	if err != nil || len(reports) != 1 {
		t.Fatalf("reports = %d, %v; want exactly 1", len(reports), err)
	}
}

func TestCreateVerificationReport_MissingProperty(t *testing.T) {
	db := newRepoDB(t)
	agent := seedUser(t, db, "Agent", "agent")
	if _, err := CreateVerificationReport(context.Background(), db, newReport("missing", agent.ID)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCompleteVerification_PendingToVerified(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	lister := seedUser(t, db, "Lister", "lister")
	agent := seedUser(t, db, "Agent", "agent")
	p := seedProperty(t, db, lister.ID)

	// Not pending yet: complete must refuse.
	if err := CompleteVerification(ctx, db, p.ID, agent.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete before pending: err = %v, want ErrNotFound", err)
	}

	if _, err := CreateVerificationReport(ctx, db, newReport(p.ID, agent.ID)); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := CompleteVerification(ctx, db, p.ID, agent.ID); err != nil {
		t.Fatalf("CompleteVerification: %v", err)
	}

	got, _ := GetProperty(ctx, db, p.ID)
	if got.VerificationStatus != domain.VerificationVerified {
		t.Fatalf("verification_status = %q, want verified", got.VerificationStatus)
	}
	if got.VerifierID == nil || *got.VerifierID != agent.ID {
		t.Fatalf("verifier_id = %v, want %s", got.VerifierID, agent.ID)
	}
}

func TestListVerificationReports_NewestFirst(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	lister := seedUser(t, db, "Lister", "lister")
	agent := seedUser(t, db, "Agent", "agent")
	p1 := seedProperty(t, db, lister.ID)
	p2 := seedProperty(t, db, lister.ID)

	r1, err := CreateVerificationReport(ctx, db, newReport(p1.ID, agent.ID))
	if err != nil {
		t.Fatalf("report p1: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := CreateVerificationReport(ctx, db, newReport(p2.ID, agent.ID)); err != nil {
		t.Fatalf("report p2: %v", err)
	}

	got, err := ListVerificationReports(ctx, db, p1.ID)
	if err != nil {
		t.Fatalf("ListVerificationReports: %v", err)
	}
	if len(got) != 1 || got[0].ID != r1.ID {
		t.Fatalf("reports filtered wrong: %+v", got)
	}
}
