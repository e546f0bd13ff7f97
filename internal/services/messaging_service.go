// Package services – MessagingService
//
// This file implements MessagingService, which owns conversations, chat
// messages, search teams, and team collaboration (shared listings and their
// comment threads). Team creation normalizes the display name, opens the
// team's conversation, and seeds it with a system message in one unit.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include conversation/team identifiers and pagination parameters where
// applicable.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MessagingService coordinates conversations, teams, and team comments.
type MessagingService struct {
	DB *gorm.DB

	// Optional guards
	MaxMessageRunes int

	// Team name normalization config
	NameLocale language.Tag
	NameMaxLen int
}

// StartConversation opens a direct thread between the creator and the given
// participants, optionally anchored to a property inquiry.
func (s *MessagingService) StartConversation(ctx context.Context, creatorID string, participantIDs []string, propertyID *string) (*domain.Conversation, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "StartConversation",
		trace.WithAttributes(attribute.String("user.id", creatorID)),
	)
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, creatorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if propertyID != nil {
		if _, err := repo.GetProperty(ctx, s.DB, *propertyID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrPropertyNotFound
			}
			return nil, err
		}
	}

	all := append([]string{creatorID}, participantIDs...)
	return repo.CreateConversation(ctx, s.DB, nil, propertyID, all)
}

// SendMessage validates the body, checks conversation membership, and
// appends a user message. The stored row is the authoritative send result.
func (s *MessagingService) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", senderID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(text) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}

	member, err := repo.IsParticipant(ctx, s.DB, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrConversationNotFound
	}

	return repo.CreateMessage(ctx, s.DB, conversationID, senderID, domain.MessageTypeUser, text)
}

// ListMessagesPage returns paginated messages for a conversation the user
// participates in.
func (s *MessagingService) ListMessagesPage(ctx context.Context, conversationID, userID string, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "ListMessagesPage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	member, err := repo.IsParticipant(ctx, s.DB, conversationID, userID)
	if err != nil {
		return nil, 0, err
	}
	if !member {
		return nil, 0, ErrConversationNotFound
	}

	total, err := repo.CountMessages(ctx, s.DB, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(ctx, s.DB, conversationID, offset, pageSize)
	return items, total, err
}

// CreateTeam normalizes the name, creates the team with its members and
// conversation, and seeds the conversation with a system message naming the
// creator.
func (s *MessagingService) CreateTeam(ctx context.Context, creatorID, name string, memberIDs []string) (*domain.SearchTeam, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "CreateTeam",
		trace.WithAttributes(attribute.String("user.id", creatorID)),
	)
	defer span.End()

	name = s.normalizeName(name)
	if name == "" {
		return nil, ErrEmptyText
	}

	creator, err := repo.GetUser(ctx, s.DB, creatorID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	team, err := repo.CreateTeam(ctx, s.DB, name, creatorID, memberIDs)
	if err != nil {
		return nil, err
	}

	// Seed the thread; a failed seed message does not undo the team.
	_, _ = repo.CreateMessage(ctx, s.DB, team.ConversationID, "", domain.MessageTypeSystem,
		fmt.Sprintf("%s created the team.", creator.Name))

	return team, nil
}

// ShareProperty shares a listing into a team for discussion.
func (s *MessagingService) ShareProperty(ctx context.Context, teamID, propertyID, userID string) (*domain.SharedProperty, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "ShareProperty",
		trace.WithAttributes(
			attribute.String("team.id", teamID),
			attribute.String("property.id", propertyID),
		),
	)
	defer span.End()

	member, err := repo.IsTeamMember(ctx, s.DB, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrTeamNotFound
	}
	if _, err := repo.GetProperty(ctx, s.DB, propertyID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	sp, err := repo.CreateSharedProperty(ctx, s.DB, teamID, propertyID, userID)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, repo.ErrDuplicate
	}
	return sp, err
}

// AddTeamComment validates membership and appends a member's note to a
// shared listing.
func (s *MessagingService) AddTeamComment(ctx context.Context, sharedPropertyID, authorID, text string) (*domain.TeamComment, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "AddTeamComment",
		trace.WithAttributes(
			attribute.String("shared_property.id", sharedPropertyID),
			attribute.String("user.id", authorID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(text) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}

	sp, err := repo.GetSharedProperty(ctx, s.DB, sharedPropertyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSharedPropertyNotFound
	}
	if err != nil {
		return nil, err
	}

	member, err := repo.IsTeamMember(ctx, s.DB, sp.TeamID, authorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrTeamNotFound
	}

	return repo.CreateTeamComment(ctx, s.DB, sharedPropertyID, authorID, text)
}

// ListTeamComments returns the notes on a shared listing for a team member.
func (s *MessagingService) ListTeamComments(ctx context.Context, sharedPropertyID, userID string, page, pageSize int) ([]domain.TeamComment, error) {
	tr := otel.Tracer("services/MessagingService")
	ctx, span := tr.Start(ctx, "ListTeamComments",
		trace.WithAttributes(attribute.String("shared_property.id", sharedPropertyID)),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	sp, err := repo.GetSharedProperty(ctx, s.DB, sharedPropertyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSharedPropertyNotFound
	}
	if err != nil {
		return nil, err
	}

	member, err := repo.IsTeamMember(ctx, s.DB, sp.TeamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrTeamNotFound
	}

	return repo.ListTeamComments(ctx, s.DB, sharedPropertyID, (page-1)*pageSize, pageSize)
}

// normalizeName trims, title-cases, and clips a team display name.
func (s *MessagingService) normalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	caser := cases.Title(s.nameLocaleOrDefault())
	name = caser.String(name)
	max := s.NameMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(name) > max {
		name = string([]rune(name)[:max])
	}
	return name
}

// nameLocaleOrDefault returns the configured locale for casing or English if unset.
func (s *MessagingService) nameLocaleOrDefault() language.Tag {
	if s.NameLocale == language.Und {
		return language.English
	}
	return s.NameLocale
}
