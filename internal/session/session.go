package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/engage"
	"github.com/edqorta/edqorta-backend/internal/geo"
	"github.com/edqorta/edqorta-backend/internal/notify"
	"github.com/edqorta/edqorta-backend/internal/services"
	"github.com/edqorta/edqorta-backend/internal/verification"
)

// Deps bundles the backend services a session issues remote operations
// against.
type Deps struct {
	Engagement   *services.EngagementService
	Feed         *services.FeedService
	Messaging    *services.MessagingService
	Profile      *services.ProfileService
	Verification *services.VerificationService
}

// Session is one client's view of the platform: a private mutation
// coordinator over primed aggregates, with every user action expressed as
// an optimistic intent against it. A session belongs to a single user and
// is safe for concurrent use.
type Session struct {
	UserID string
	Coord  *engage.Coordinator

	deps          Deps
	intentTimeout time.Duration
	log           zerolog.Logger
}

// Config tunes session behavior.
type Config struct {
	// IntentTimeout bounds each remote operation; zero means no bound.
	IntentTimeout time.Duration
	// Sink receives user-facing failure events.
	Sink notify.Sink
	// Logger is used for structured logging by the coordinator.
	Logger zerolog.Logger
}

// New constructs a session for userID with an empty aggregate cache.
func New(userID string, deps Deps, cfg Config) *Session {
	return &Session{
		UserID: userID,
		Coord: engage.New(engage.Options{
			Sink:   cfg.Sink,
			Logger: cfg.Logger,
		}),
		deps:          deps,
		intentTimeout: cfg.IntentTimeout,
		log:           cfg.Logger,
	}
}

// Close stops accepting intents and waits for in-flight settlements.
func (s *Session) Close() { s.Coord.Close() }

// --- priming ---

// PrimeProperty loads a post with its viewer-relative liked flag and
// comment thread, and registers the aggregate.
func (s *Session) PrimeProperty(ctx context.Context, propertyID string) (PropertyView, error) {
	p, err := s.deps.Feed.Get(ctx, propertyID)
	if err != nil {
		return PropertyView{}, err
	}
	liked, err := s.deps.Engagement.HasLiked(ctx, propertyID, s.UserID)
	if err != nil {
		return PropertyView{}, err
	}
	comments, _, err := s.deps.Engagement.ListComments(ctx, propertyID, 1, 100)
	if err != nil {
		return PropertyView{}, err
	}
	v := propertyView(p, liked, comments)
	s.Coord.Register(PropertyKey(propertyID), v)
	return v, nil
}

// PrimeProfile loads a user profile with the viewer-relative following
// flag and registers the aggregate.
func (s *Session) PrimeProfile(ctx context.Context, userID string) (ProfileView, error) {
	u, err := s.deps.Profile.Get(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	following := false
	if userID != s.UserID {
		following, err = s.deps.Engagement.IsFollowing(ctx, s.UserID, userID)
		if err != nil {
			return ProfileView{}, err
		}
	}
	v := profileView(u, following)
	s.Coord.Register(ProfileKey(userID), v)
	return v, nil
}

// PrimeConversation loads a message thread and registers the aggregate.
func (s *Session) PrimeConversation(ctx context.Context, conversationID string) (ConversationView, error) {
	msgs, _, err := s.deps.Messaging.ListMessagesPage(ctx, conversationID, s.UserID, 1, 200)
	if err != nil {
		return ConversationView{}, err
	}
	v := ConversationView{ID: conversationID}
	for i := range msgs {
		v.Messages = append(v.Messages, messageView(&msgs[i], MessageSent))
	}
	s.Coord.Register(ConversationKey(conversationID), v)
	return v, nil
}

// PrimeTeamThread loads the notes on a shared listing and registers the
// aggregate.
func (s *Session) PrimeTeamThread(ctx context.Context, sharedPropertyID string) (TeamThreadView, error) {
	notes, err := s.deps.Messaging.ListTeamComments(ctx, sharedPropertyID, s.UserID, 1, 200)
	if err != nil {
		return TeamThreadView{}, err
	}
	v := TeamThreadView{SharedPropertyID: sharedPropertyID}
	for i := range notes {
		v.Comments = append(v.Comments, teamCommentView(&notes[i]))
	}
	s.Coord.Register(TeamThreadKey(sharedPropertyID), v)
	return v, nil
}

// PrimeFeed loads the first pages of the feed and registers the feed
// aggregate.
func (s *Session) PrimeFeed(ctx context.Context) (FeedView, error) {
	items, _, err := s.deps.Feed.ListPage(ctx, 1, 100)
	if err != nil {
		return FeedView{}, err
	}
	v := FeedView{}
	for _, p := range items {
		v.PostIDs = append(v.PostIDs, p.ID)
	}
	s.Coord.Register(FeedKey, v)
	return v, nil
}

// --- intents ---

// ToggleLike flips the liked state of a primed post. The flip is visible
// immediately; a second toggle before settlement queues a compensating
// intent rather than cancelling the first.
func (s *Session) ToggleLike(ctx context.Context, propertyID string) (*engage.Intent, error) {
	key := PropertyKey(propertyID)
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindToggleLike,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			v := a.(PropertyView)
			if v.IsLiked {
				v.IsLiked = false
				if v.Likes > 0 {
					v.Likes--
				}
			} else {
				v.IsLiked = true
				v.Likes++
			}
			return v
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			p, liked, err := s.deps.Engagement.ToggleLike(ctx, propertyID, s.UserID)
			if err != nil {
				return nil, err
			}
			return propertyView(p, liked, nil), nil
		},
		Reconcile: func(base, result engage.Aggregate) engage.Aggregate {
			// The authoritative counters land on the settled base so the
			// comment thread, including siblings committed meanwhile,
			// survives the refresh.
			prev, _ := base.(PropertyView)
			v := result.(PropertyView)
			v.Comments = prev.Comments
			return v
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't update like. Please try again.",
	})
}

// ToggleFollow flips whether the session user follows userID.
func (s *Session) ToggleFollow(ctx context.Context, userID string) (*engage.Intent, error) {
	key := ProfileKey(userID)
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindToggleFollow,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			v := a.(ProfileView)
			if v.IsFollowing {
				v.IsFollowing = false
				if v.FollowersCount > 0 {
					v.FollowersCount--
				}
			} else {
				v.IsFollowing = true
				v.FollowersCount++
			}
			return v
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			u, following, err := s.deps.Engagement.ToggleFollow(ctx, s.UserID, userID)
			if err != nil {
				return nil, err
			}
			return profileView(u, following), nil
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't update follow. Please try again.",
	})
}

// SendMessage appends a "sending" message to a primed conversation and
// delivers it. On failure the speculative message disappears from the
// thread.
func (s *Session) SendMessage(ctx context.Context, conversationID, text string) (*engage.Intent, error) {
	key := ConversationKey(conversationID)
	pending := MessageView{
		ID:        "pending-" + uuid.NewString(),
		SenderID:  s.UserID,
		Type:      domain.MessageTypeUser,
		Text:      text,
		Status:    MessageSending,
		CreatedAt: time.Now().UTC(),
	}
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindSendMessage,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			return appendMessage(a.(ConversationView), pending)
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			m, err := s.deps.Messaging.SendMessage(ctx, conversationID, s.UserID, text)
			if err != nil {
				return nil, err
			}
			return messageView(m, MessageSent), nil
		},
		Reconcile: func(base, result engage.Aggregate) engage.Aggregate {
			v, _ := base.(ConversationView)
			v.ID = conversationID
			return appendMessage(v, result.(MessageView))
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Message failed to send. Please try again.",
	})
}

// AddComment appends a comment to a primed post optimistically.
func (s *Session) AddComment(ctx context.Context, propertyID, text string) (*engage.Intent, error) {
	key := PropertyKey(propertyID)
	pending := CommentView{
		ID:        "pending-" + uuid.NewString(),
		UserID:    s.UserID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindAddComment,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			return appendComment(a.(PropertyView), pending)
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			c, err := s.deps.Engagement.AddComment(ctx, propertyID, s.UserID, text)
			if err != nil {
				return nil, err
			}
			return commentView(c), nil
		},
		Reconcile: func(base, result engage.Aggregate) engage.Aggregate {
			v, _ := base.(PropertyView)
			return appendComment(v, result.(CommentView))
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't post comment. Please try again.",
	})
}

// AddTeamComment appends a note to a primed team thread optimistically.
func (s *Session) AddTeamComment(ctx context.Context, sharedPropertyID, text string) (*engage.Intent, error) {
	key := TeamThreadKey(sharedPropertyID)
	pending := TeamCommentView{
		ID:        "pending-" + uuid.NewString(),
		AuthorID:  s.UserID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindAddTeamComment,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			return appendTeamComment(a.(TeamThreadView), pending)
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			c, err := s.deps.Messaging.AddTeamComment(ctx, sharedPropertyID, s.UserID, text)
			if err != nil {
				return nil, err
			}
			return teamCommentView(c), nil
		},
		Reconcile: func(base, result engage.Aggregate) engage.Aggregate {
			v, _ := base.(TeamThreadView)
			v.SharedPropertyID = sharedPropertyID
			return appendTeamComment(v, result.(TeamCommentView))
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't add note. Please try again.",
	})
}

// UpdateProfile merges a partial update into the session user's own
// primed profile optimistically.
func (s *Session) UpdateProfile(ctx context.Context, in services.ProfileUpdate) (*engage.Intent, error) {
	key := ProfileKey(s.UserID)
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindUpdateProfile,
		Target: key,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			v := a.(ProfileView)
			if in.Name != nil {
				v.Name = *in.Name
			}
			if in.Avatar != nil {
				v.Avatar = *in.Avatar
			}
			if in.Bio != nil {
				v.Bio = *in.Bio
			}
			if in.Location != nil {
				v.Location = *in.Location
			}
			if in.IsPrivate != nil {
				v.IsPrivate = *in.IsPrivate
			}
			return v
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			u, err := s.deps.Profile.Update(ctx, s.UserID, in)
			if err != nil {
				return nil, err
			}
			return profileView(u, false), nil
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't save profile. Please try again.",
	})
}

// CreatePost prepends a placeholder to the primed feed and creates the
// post. The committed feed carries the authoritative ID; callers can prime
// the new PropertyView after settlement.
func (s *Session) CreatePost(ctx context.Context, in services.PostInput) (*engage.Intent, error) {
	placeholder := "pending-" + uuid.NewString()
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindCreatePost,
		Target: FeedKey,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			return prependPost(a.(FeedView), placeholder)
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			p, err := s.deps.Feed.CreatePost(ctx, s.UserID, in)
			if err != nil {
				return nil, err
			}
			return p.ID, nil
		},
		Reconcile: func(base, result engage.Aggregate) engage.Aggregate {
			v, _ := base.(FeedView)
			return prependPost(v, result.(string))
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't create post. Please try again.",
	})
}

// DeletePost removes a post from the primed feed optimistically. A failed
// delete restores the post in place, sibling entries untouched.
func (s *Session) DeletePost(ctx context.Context, propertyID string) (*engage.Intent, error) {
	return s.Coord.Issue(ctx, engage.IntentSpec{
		Kind:   engage.KindDeletePost,
		Target: FeedKey,
		Apply: func(a engage.Aggregate) engage.Aggregate {
			return removePost(a.(FeedView), propertyID)
		},
		Remote: func(ctx context.Context) (engage.Aggregate, error) {
			if err := s.deps.Feed.DeletePost(ctx, propertyID, s.UserID); err != nil {
				return nil, err
			}
			return nil, nil
		},
		Reconcile: func(base, _ engage.Aggregate) engage.Aggregate {
			v, _ := base.(FeedView)
			return removePost(v, propertyID)
		},
		Timeout:        s.intentTimeout,
		FailureMessage: "Couldn't delete post. Please try again.",
	})
}

// SubmitVerification runs the proximity-gated verification workflow for a
// primed property. The mutation intent is only issued once the gate
// admits; a rejected or failed gate leaves the coordinator untouched.
func (s *Session) SubmitVerification(ctx context.Context, sub *verification.Submission, locator verification.Locator, thresholdKm float64) (*engage.Intent, error) {
	key := PropertyKey(sub.PropertyID)

	p, err := s.deps.Feed.Get(ctx, sub.PropertyID)
	if err != nil {
		return nil, err
	}
	var target *geo.LatLon
	if p.Latitude != nil && p.Longitude != nil {
		target = &geo.LatLon{Lat: *p.Latitude, Lon: *p.Longitude}
	}

	wf := &verification.Workflow{
		Locator:     locator,
		Issuer:      s.Coord,
		ThresholdKm: thresholdKm,
		Logger:      s.log,
	}
	return wf.Submit(ctx, sub, target, func(pos geo.LatLon, gate geo.Result) engage.IntentSpec {
		return engage.IntentSpec{
			Kind:   engage.KindSubmitVerification,
			Target: key,
			Apply: func(a engage.Aggregate) engage.Aggregate {
				v := a.(PropertyView)
				v.VerificationStatus = domain.VerificationPending
				return v
			},
			Remote: func(ctx context.Context) (engage.Aggregate, error) {
				_, err := s.deps.Verification.Submit(ctx, services.ReportInput{
					PropertyID:     sub.PropertyID,
					AgentID:        s.UserID,
					Latitude:       pos.Lat,
					Longitude:      pos.Lon,
					DistanceKm:     gate.DistanceKm,
					DetailsMatch:   sub.Checklist.DetailsMatch,
					PhotosAccurate: sub.Checklist.PhotosAccurate,
					EvidenceRef:    sub.EvidenceRef,
				})
				if err != nil {
					return nil, err
				}
				return nil, nil
			},
			Reconcile: func(base, _ engage.Aggregate) engage.Aggregate {
				v, _ := base.(PropertyView)
				v.ID = sub.PropertyID
				v.VerificationStatus = domain.VerificationPending
				return v
			},
			Timeout:        s.intentTimeout,
			FailureMessage: "Verification submission failed. Please try again.",
		}
	})
}

// Wait blocks until the intent settles and returns its terminal error, if
// any. Convenience wrapper used mostly by handlers that want synchronous
// semantics.
func (s *Session) Wait(ctx context.Context, it *engage.Intent) error {
	return it.Wait(ctx)
}
