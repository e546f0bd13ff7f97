// Package domain defines the persistence models for users, properties,
// conversations, search teams, and verification reports. These types are
// mapped with GORM and form the authoritative data layer that the
// engagement coordinator reconciles against.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Post types for Property.
const (
	PostTypeProperty = "property"
	PostTypeNormal   = "normal"
)

// Verification states for Property.
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
)

// Message types.
const (
	MessageTypeUser   = "user"
	MessageTypeSystem = "system"
)

// User represents an account on the platform: a renter, lister, agent, or
// business. Follower/following relations live in the Follow join table; the
// counters here are denormalized and kept consistent by the profile and
// engagement services.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique handle; indexed for lookup.
//   - AgentStatus: "none", "pending", or "verified".
//   - ListerStatus: "unverified" or "verified".
//   - TrustScore: 0..100 reputation score used in feed ranking.
type User struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Name           string         `json:"name"            gorm:"type:varchar(120);not null"`
	Username       string         `json:"username"        gorm:"type:varchar(64);not null;uniqueIndex"`
	Avatar         string         `json:"avatar"          gorm:"type:text"`
	Bio            string         `json:"bio"             gorm:"type:text"`
	Location       string         `json:"location"        gorm:"type:varchar(255)"`
	AccountType    string         `json:"account_type"    gorm:"type:varchar(16);not null;default:'personal';check:account_type IN ('personal','business')"`
	AgentStatus    string         `json:"agent_status"    gorm:"type:varchar(16);not null;default:'none';check:agent_status IN ('none','pending','verified')"`
	ListerStatus   string         `json:"lister_status"   gorm:"type:varchar(16);not null;default:'unverified';check:lister_status IN ('unverified','verified')"`
	TrustScore     int            `json:"trust_score"     gorm:"not null;default:0"`
	PostsCount     int            `json:"posts_count"     gorm:"not null;default:0"`
	FollowersCount int            `json:"followers_count" gorm:"not null;default:0"`
	FollowingCount int            `json:"following_count" gorm:"not null;default:0"`
	IsPrivate      bool           `json:"is_private"      gorm:"not null;default:false"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Follow is the directed follower edge: Follower follows Followee.
type Follow struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	FollowerID string    `json:"follower_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_follow_pair,priority:1"`
	FolloweeID string    `json:"followee_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_follow_pair,priority:2"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `json:"-" gorm:"foreignKey:FollowerID;references:ID;constraint:OnDelete:CASCADE"`
	Followee User `json:"-" gorm:"foreignKey:FolloweeID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string { return "follows" }

// Property is a feed post: either a property listing (postType "property",
// with price/beds/coordinates) or a plain social post (postType "normal").
// The Likes counter is denormalized from the PropertyLike join table and is
// clamped at zero by the engagement service.
type Property struct {
	ID                 string         `json:"id"            gorm:"type:char(36);primaryKey"`
	ListerID           string         `json:"lister_id"     gorm:"type:char(36);not null;index"`
	PostType           string         `json:"post_type"     gorm:"type:varchar(16);not null;check:post_type IN ('property','normal')"`
	Description        string         `json:"description"   gorm:"type:text;not null"`
	Location           string         `json:"location,omitempty"       gorm:"type:varchar(255)"`
	Price              *float64       `json:"price,omitempty"`
	PriceInterval      string         `json:"price_interval,omitempty" gorm:"type:varchar(8)"`
	Beds               *int           `json:"beds,omitempty"`
	Baths              *int           `json:"baths,omitempty"`
	ListingType        string         `json:"listing_type,omitempty"   gorm:"type:varchar(8)"` // rent | sale
	Latitude           *float64       `json:"latitude,omitempty"`
	Longitude          *float64       `json:"longitude,omitempty"`
	Likes              int            `json:"likes"         gorm:"not null;default:0"`
	Reposts            int            `json:"reposts"       gorm:"not null;default:0"`
	Views              int            `json:"views"         gorm:"not null;default:0"`
	IsAvailable        bool           `json:"is_available"  gorm:"not null;default:true"`
	VerificationStatus string         `json:"verification_status" gorm:"type:varchar(16);not null;default:'unverified';check:verification_status IN ('unverified','pending','verified')"`
	VerifierID         *string        `json:"verifier_id,omitempty" gorm:"type:char(36)"`
	CreatedAt          time.Time      `json:"created_at"    gorm:"index"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-"             gorm:"index"`

	Lister User `json:"lister" gorm:"foreignKey:ListerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Property.
func (Property) TableName() string { return "properties" }

// PropertyLike records that a user liked a property. One row per
// (property, user) pair, enforced by unique index.
type PropertyLike struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	PropertyID string    `json:"property_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_like_pair,priority:1"`
	UserID     string    `json:"user_id"     gorm:"type:char(36);not null;index;uniqueIndex:ux_like_pair,priority:2"`
	CreatedAt  time.Time `json:"created_at"`

	Property Property `json:"-" gorm:"foreignKey:PropertyID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for PropertyLike.
func (PropertyLike) TableName() string { return "property_likes" }

// Comment is a public comment on a property post.
type Comment struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	PropertyID string         `json:"property_id" gorm:"type:char(36);not null;index:idx_property_comments,priority:1"`
	UserID     string         `json:"user_id"     gorm:"type:char(36);not null;index"`
	Text       string         `json:"text"        gorm:"type:text;not null"`
	CreatedAt  time.Time      `json:"created_at"  gorm:"index:idx_property_comments,priority:2"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	Property Property `json:"-" gorm:"foreignKey:PropertyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User     User     `json:"user" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// Conversation is a direct or team thread. Team conversations carry a
// TeamID back-reference; participants live in ConversationParticipant.
type Conversation struct {
	ID         string         `json:"id"           gorm:"type:char(36);primaryKey"`
	TeamID     *string        `json:"team_id,omitempty"     gorm:"type:char(36);index"`
	PropertyID *string        `json:"property_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// ConversationParticipant links a user to a conversation.
type ConversationParticipant struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_conv_user,priority:1"`
	UserID         string    `json:"user_id"         gorm:"type:char(36);not null;index;uniqueIndex:ux_conv_user,priority:2"`
	CreatedAt      time.Time `json:"created_at"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for ConversationParticipant.
func (ConversationParticipant) TableName() string { return "conversation_participants" }

// Message is a single utterance in a conversation. SenderID is empty for
// system messages (e.g., "Ada created the team."). The client-side
// sending/sent/failed status never persists; a stored message is
// authoritative by definition.
type Message struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string         `json:"conversation_id" gorm:"type:char(36);not null;index:idx_conv_msgs,priority:1"`
	SenderID       string         `json:"sender_id"       gorm:"type:char(36);index"`
	Type           string         `json:"type"            gorm:"type:varchar(8);not null;default:'user';check:type IN ('user','system')"`
	Text           string         `json:"text"            gorm:"type:text;not null"`
	CreatedAt      time.Time      `json:"created_at"      gorm:"index:idx_conv_msgs,priority:2"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// SearchTeam groups users hunting for a home together. Each team owns one
// conversation; shared listings live in SharedProperty.
type SearchTeam struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Name           string         `json:"name"            gorm:"type:varchar(120);not null"`
	CreatorID      string         `json:"creator_id"      gorm:"type:char(36);not null;index"`
	ConversationID string         `json:"conversation_id" gorm:"type:char(36);not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for SearchTeam.
func (SearchTeam) TableName() string { return "search_teams" }

// TeamMember links a user to a search team.
type TeamMember struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	TeamID    string    `json:"team_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_team_user,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_team_user,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	Team SearchTeam `json:"-" gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for TeamMember.
func (TeamMember) TableName() string { return "team_members" }

// SharedProperty is a listing shared into a team for discussion.
type SharedProperty struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	TeamID     string    `json:"team_id"     gorm:"type:char(36);not null;index;uniqueIndex:ux_team_property,priority:1"`
	PropertyID string    `json:"property_id" gorm:"type:char(36);not null;uniqueIndex:ux_team_property,priority:2"`
	SharerID   string    `json:"sharer_id"   gorm:"type:char(36);not null"`
	CreatedAt  time.Time `json:"created_at"`

	Team SearchTeam `json:"-" gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for SharedProperty.
func (SharedProperty) TableName() string { return "shared_properties" }

// TeamComment is a member's note on a property shared within a team.
type TeamComment struct {
	ID               string         `json:"id"                 gorm:"type:char(36);primaryKey"`
	SharedPropertyID string         `json:"shared_property_id" gorm:"type:char(36);not null;index:idx_shared_comments,priority:1"`
	AuthorID         string         `json:"author_id"          gorm:"type:char(36);not null"`
	Text             string         `json:"text"               gorm:"type:text;not null"`
	CreatedAt        time.Time      `json:"created_at"         gorm:"index:idx_shared_comments,priority:2"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`

	SharedProperty SharedProperty `json:"-" gorm:"foreignKey:SharedPropertyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author         User           `json:"author" gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName returns the database table name for TeamComment.
func (TeamComment) TableName() string { return "team_comments" }

// VerificationReport is a persisted on-site verification submission. Rows
// exist only for submissions that passed the proximity gate; rejected
// submissions are discarded client-side and never reach this table.
//
// DistanceKm records the computed submitter-to-property distance at
// submission time for audit.
type VerificationReport struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	PropertyID     string         `json:"property_id"     gorm:"type:char(36);not null;index"`
	AgentID        string         `json:"agent_id"        gorm:"type:char(36);not null;index"`
	Latitude       float64        `json:"latitude"        gorm:"not null"`
	Longitude      float64        `json:"longitude"       gorm:"not null"`
	DistanceKm     float64        `json:"distance_km"     gorm:"not null"`
	DetailsMatch   bool           `json:"details_match"   gorm:"not null"`
	PhotosAccurate bool           `json:"photos_accurate" gorm:"not null"`
	EvidenceRef    string         `json:"evidence_ref"    gorm:"type:text;not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`

	Property Property `json:"-" gorm:"foreignKey:PropertyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Agent    User     `json:"-" gorm:"foreignKey:AgentID;references:ID"`
}

// TableName returns the database table name for VerificationReport.
func (VerificationReport) TableName() string { return "verification_reports" }
