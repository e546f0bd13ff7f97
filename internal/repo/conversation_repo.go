// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation, ConversationParticipant, and Message models.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

// CreateConversation inserts a conversation and its participant rows in one
// transaction. teamID and propertyID are optional back-references.
func CreateConversation(ctx context.Context, db *gorm.DB, teamID, propertyID *string, participantIDs []string) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		PropertyID: propertyID,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range participantIDs {
			p := &domain.ConversationParticipant{
				ID:             uuid.NewString(),
				ConversationID: conv.ID,
				UserID:         uid,
				CreatedAt:      time.Now().UTC(),
			}
			if err := tx.Create(p).Error; err != nil {
				if isUniqueViolation(err) {
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation fetches a conversation by ID, or ErrNotFound.
func GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// IsParticipant reports whether userID belongs to the conversation.
func IsParticipant(ctx context.Context, db *gorm.DB, conversationID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error
	return n > 0, err
}

// CreateMessage appends a message to a conversation. msgType is
// domain.MessageTypeUser or domain.MessageTypeSystem; system messages carry
// an empty senderID.
func CreateMessage(ctx context.Context, db *gorm.DB, conversationID, senderID, msgType, text string) (*domain.Message, error) {
	m := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           msgType,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CountMessages returns the total messages in a conversation.
func CountMessages(ctx context.Context, db *gorm.DB, conversationID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error
	return total, err
}

// ListMessagesPage returns a page of a conversation's messages in ascending
// creation order. The caller computes offset and limit.
func ListMessagesPage(ctx context.Context, db *gorm.DB, conversationID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
