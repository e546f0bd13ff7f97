// Package session provides the per-client facade over the mutation
// coordinator: it primes aggregates from the services, expresses each user
// action as an optimistic intent, and reconciles views with authoritative
// results.
//
// This file defines the view aggregates the coordinator caches. Views are
// plain values; every delta copies before writing so speculative state
// never aliases committed state.
package session

import (
	"time"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/engage"
)

// Message delivery states as seen in a session view. Only "sent" ever
// reaches the committed base; "sending" exists purely inside pending
// deltas and a failed send drops out of the view entirely.
const (
	MessageSending = "sending"
	MessageSent    = "sent"
)

// Target key constructors. One aggregate per key.

func PropertyKey(id string) engage.TargetKey     { return engage.TargetKey("property:" + id) }
func ProfileKey(id string) engage.TargetKey      { return engage.TargetKey("profile:" + id) }
func ConversationKey(id string) engage.TargetKey { return engage.TargetKey("conversation:" + id) }
func TeamThreadKey(id string) engage.TargetKey   { return engage.TargetKey("team-thread:" + id) }

// FeedKey is the single key for the session's feed aggregate.
const FeedKey = engage.TargetKey("feed")

// CommentView is one public comment inside a PropertyView.
type CommentView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyView is the session's aggregate for a single feed post: the
// engagement counters plus the viewer-relative liked flag and the comment
// thread.
type PropertyView struct {
	ID                 string        `json:"id"`
	ListerID           string        `json:"lister_id"`
	Description        string        `json:"description"`
	Likes              int           `json:"likes"`
	IsLiked            bool          `json:"is_liked"`
	Comments           []CommentView `json:"comments"`
	VerificationStatus string        `json:"verification_status"`
}

// ProfileView is the session's aggregate for a user profile, including the
// viewer-relative following flag.
type ProfileView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	IsPrivate      bool   `json:"is_private"`
	TrustScore     int    `json:"trust_score"`
	PostsCount     int    `json:"posts_count"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	IsFollowing    bool   `json:"is_following"`
}

// MessageView is one message inside a ConversationView.
type MessageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationView is the session's aggregate for a message thread.
type ConversationView struct {
	ID       string        `json:"id"`
	Messages []MessageView `json:"messages"`
}

// TeamCommentView is one member note inside a TeamThreadView.
type TeamCommentView struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamThreadView is the session's aggregate for the notes on a listing
// shared within a search team.
type TeamThreadView struct {
	SharedPropertyID string            `json:"shared_property_id"`
	Comments         []TeamCommentView `json:"comments"`
}

// FeedView is the session's aggregate for the feed: post IDs, newest
// first. Post bodies live in their own PropertyView aggregates.
type FeedView struct {
	PostIDs []string `json:"post_ids"`
}

// --- domain -> view mapping ---

func propertyView(p *domain.Property, liked bool, comments []domain.Comment) PropertyView {
	v := PropertyView{
		ID:                 p.ID,
		ListerID:           p.ListerID,
		Description:        p.Description,
		Likes:              p.Likes,
		IsLiked:            liked,
		VerificationStatus: p.VerificationStatus,
	}
	for _, c := range comments {
		v.Comments = append(v.Comments, commentView(&c))
	}
	return v
}

func commentView(c *domain.Comment) CommentView {
	return CommentView{ID: c.ID, UserID: c.UserID, Text: c.Text, CreatedAt: c.CreatedAt}
}

func profileView(u *domain.User, following bool) ProfileView {
	return ProfileView{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		Location:       u.Location,
		IsPrivate:      u.IsPrivate,
		TrustScore:     u.TrustScore,
		PostsCount:     u.PostsCount,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		IsFollowing:    following,
	}
}

func messageView(m *domain.Message, status string) MessageView {
	return MessageView{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Type:      m.Type,
		Text:      m.Text,
		Status:    status,
		CreatedAt: m.CreatedAt,
	}
}

func teamCommentView(c *domain.TeamComment) TeamCommentView {
	return TeamCommentView{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text, CreatedAt: c.CreatedAt}
}

// appendComment returns a copy of the view with one more comment.
func appendComment(v PropertyView, c CommentView) PropertyView {
	out := v
	out.Comments = append(append([]CommentView(nil), v.Comments...), c)
	return out
}

// appendMessage returns a copy of the view with one more message.
func appendMessage(v ConversationView, m MessageView) ConversationView {
	out := v
	out.Messages = append(append([]MessageView(nil), v.Messages...), m)
	return out
}

// appendTeamComment returns a copy of the view with one more note.
func appendTeamComment(v TeamThreadView, c TeamCommentView) TeamThreadView {
	out := v
	out.Comments = append(append([]TeamCommentView(nil), v.Comments...), c)
	return out
}

// prependPost returns a copy of the feed with id at the front.
func prependPost(v FeedView, id string) FeedView {
	out := FeedView{PostIDs: make([]string, 0, len(v.PostIDs)+1)}
	out.PostIDs = append(out.PostIDs, id)
	out.PostIDs = append(out.PostIDs, v.PostIDs...)
	return out
}

// removePost returns a copy of the feed without id.
func removePost(v FeedView, id string) FeedView {
	out := FeedView{PostIDs: make([]string, 0, len(v.PostIDs))}
	for _, p := range v.PostIDs {
		if p != id {
			out.PostIDs = append(out.PostIDs, p)
		}
	}
	return out
}
