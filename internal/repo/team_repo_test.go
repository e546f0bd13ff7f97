package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

func TestCreateTeam_ConversationMembersAndDedup(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "Ada", "ada")
	ben := seedUser(t, db, "Ben", "ben")

	// Creator listed twice among members: must not produce duplicate rows.
	team, err := CreateTeam(ctx, db, "Lekki Hunters", ada.ID, []string{ben.ID, ada.ID})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.ID == "" || team.ConversationID == "" {
		t.Fatalf("unexpected team: %+v", team)
	}

	conv, err := GetConversation(ctx, db, team.ConversationID)
	if err != nil {
		t.Fatalf("team conversation missing: %v", err)
	}
	if conv.TeamID == nil || *conv.TeamID != team.ID {
		t.Fatalf("conversation not linked back to team: %+v", conv)
	}

	for _, uid := range []string{ada.ID, ben.ID} {
		if ok, _ := IsTeamMember(ctx, db, team.ID, uid); !ok {
			t.Fatalf("user %s should be a team member", uid)
		}
		if ok, _ := IsParticipant(ctx, db, conv.ID, uid); !ok {
			t.Fatalf("user %s should be a conversation participant", uid)
		}
	}

	var members int64
	if err := db.Model(&domain.TeamMember{}).Where("team_id = ?", team.ID).Count(&members).Error; err != nil {
		t.Fatalf("count members: %v", err)
	}
	if members != 2 {
		t.Fatalf("members = %d, want 2 (creator deduped)", members)
	}

	got, err := GetTeam(ctx, db, team.ID)
	if err != nil || got.Name != "Lekki Hunters" {
		t.Fatalf("GetTeam = %+v, %v", got, err)
	}
}

func TestCreateSharedProperty_OncePerTeam(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "Ada", "ada")
	lister := seedUser(t, db, "Lister", "lister")
	p := seedProperty(t, db, lister.ID)

	team, err := CreateTeam(ctx, db, "Hunters", ada.ID, nil)
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	sp, err := CreateSharedProperty(ctx, db, team.ID, p.ID, ada.ID)
	if err != nil {
		t.Fatalf("CreateSharedProperty: %v", err)
	}
	if _, err := GetSharedProperty(ctx, db, sp.ID); err != nil {
		t.Fatalf("GetSharedProperty: %v", err)
	}

	if _, err := CreateSharedProperty(ctx, db, team.ID, p.ID, ada.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second share: err = %v, want ErrDuplicate", err)
	}
}

func TestTeamComments_AscendingWithAuthors(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "Ada", "ada")
	ben := seedUser(t, db, "Ben", "ben")
	lister := seedUser(t, db, "Lister", "lister")
	p := seedProperty(t, db, lister.ID)

	team, err := CreateTeam(ctx, db, "Hunters", ada.ID, []string{ben.ID})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	sp, err := CreateSharedProperty(ctx, db, team.ID, p.ID, ada.ID)
	if err != nil {
		t.Fatalf("CreateSharedProperty: %v", err)
	}

	first, err := CreateTeamComment(ctx, db, sp.ID, ada.ID, "Love the kitchen.")
	if err != nil {
		t.Fatalf("CreateTeamComment: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := CreateTeamComment(ctx, db, sp.ID, ben.ID, "Too far from work though.")
	if err != nil {
		t.Fatalf("CreateTeamComment: %v", err)
	}

	got, err := ListTeamComments(ctx, db, sp.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTeamComments: %v", err)
	}
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Author.ID != ada.ID || got[1].Author.ID != ben.ID {
		t.Fatalf("authors not preloaded")
	}
}
