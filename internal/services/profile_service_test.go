package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestProfileGet(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := &ProfileService{DB: db}
	u := mustUser(t, db, "Ada", "ada")

	got, err := s.Get(ctx, u.ID)
	if err != nil || got.Username != "ada" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestProfileUpdate_MergesOnlySuppliedFields(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := &ProfileService{DB: db}
	u := mustUser(t, db, "Ada", "ada")

	got, err := s.Update(ctx, u.ID, ProfileUpdate{
		Bio:       strPtr("  house hunting in Lagos "),
		IsPrivate: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Bio != "house hunting in Lagos" || !got.IsPrivate {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Name != "Ada" {
		t.Fatalf("unsupplied field changed: %+v", got)
	}

	// A later partial update leaves earlier changes intact.
	got, err = s.Update(ctx, u.ID, ProfileUpdate{Location: strPtr("Lekki")})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if got.Bio != "house hunting in Lagos" || got.Location != "Lekki" {
		t.Fatalf("merge broke earlier change: %+v", got)
	}
}

func TestProfileUpdate_Validation(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	s := &ProfileService{DB: db, MaxBioRunes: 5}
	u := mustUser(t, db, "Ada", "ada")

	if _, err := s.Update(ctx, u.ID, ProfileUpdate{Name: strPtr("   ")}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("blank name: err = %v, want ErrEmptyText", err)
	}
	if _, err := s.Update(ctx, u.ID, ProfileUpdate{Bio: strPtr("toolong")}); !errors.Is(err, ErrTooLong) {
		t.Fatalf("long bio: err = %v, want ErrTooLong", err)
	}
	if _, err := s.Update(ctx, uuid.NewString(), ProfileUpdate{Bio: strPtr("x")}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user: err = %v, want ErrUserNotFound", err)
	}
}
