package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_RoundTripAndScope(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u1", "conv-1", "key-1", "msg-9", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ResultID != "msg-9" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "conv-1", "key-1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ResultID != "msg-9" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Same key under a different scope is a different record.
	if _, err := GetIdempotency(ctx, db, "u1", "conv-2", "key-1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other scope: err = %v, want ErrNotFound", err)
	}
	// Empty scope never matches anything.
	if _, err := GetIdempotency(ctx, db, "u1", "", "key-1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty scope: err = %v, want ErrNotFound", err)
	}
}

func TestIdempotency_DuplicateAndExpiry(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "conv-1", "key-1", "msg-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u1", "conv-1", "key-1", "msg-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate: err = %v, want ErrDuplicate", err)
	}

	// Expired records are invisible to lookups.
	if _, err := CreateIdempotency(ctx, db, "u2", "conv-1", "key-1", "msg-3", 201, time.Millisecond); err != nil {
		t.Fatalf("short-ttl create: %v", err)
	}
	later := time.Now().UTC().Add(time.Minute)
	if _, err := GetIdempotency(ctx, db, "u2", "conv-1", "key-1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired: err = %v, want ErrNotFound", err)
	}
}

func TestStats_FeedAndMessages(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	count, maxAt, err := FeedStats(ctx, db)
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("empty feed stats = %d, %v, %v", count, maxAt, err)
	}

	lister := seedUser(t, db, "Lister", "lister")
	seedProperty(t, db, lister.ID)
	count, maxAt, err = FeedStats(ctx, db)
	if err != nil || count != 1 || maxAt == nil {
		t.Fatalf("feed stats = %d, %v, %v; want 1 with timestamp", count, maxAt, err)
	}

	conv, err := CreateConversation(ctx, db, nil, nil, []string{lister.ID})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	count, maxAt, err = MessagesStats(ctx, db, conv.ID)
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("empty messages stats = %d, %v, %v", count, maxAt, err)
	}
}
