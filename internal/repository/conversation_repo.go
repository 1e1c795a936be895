package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"solace/internal/model"
	"solace/internal/pkg/id"
)

var (
	// ErrNotFound is returned when a conversation does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("conversation not found")

	// ErrInvalidRole rejects messages authored by anything but the two
	// permitted roles
	ErrInvalidRole = errors.New("invalid message role")
)

// ConversationRepo owns persisted conversations and their messages.
// Every operation that takes a conversation id verifies ownership before
// reading or mutating.
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo creates a conversation repository
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create creates a conversation together with its first user message in one
// transaction. The title is derived from the first message.
func (r *ConversationRepo) Create(ctx context.Context, userID, firstMessage string) (*model.Conversation, error) {
	conv := &model.Conversation{
		ID:     id.New(),
		UserID: userID,
		Title:  model.DeriveTitle(firstMessage),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}

		msg := model.Message{
			ConversationID: conv.ID,
			Role:           model.RoleUser,
			Content:        firstMessage,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		conv.Messages = []model.Message{msg}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conv, nil
}

// AppendMessage adds one message to an owned conversation and bumps its
// updated_at. Returns ErrNotFound when the conversation is absent or owned
// by someone else.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, userID string, role model.Role, content string) (*model.Message, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	var msg model.Message

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		msg = model.Message{
			ConversationID: conv.ID,
			Role:           role,
			Content:        content,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", conv.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetByID fetches an owned conversation with its messages in commit order
func (r *ConversationRepo) GetByID(ctx context.Context, conversationID, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.id ASC")
		}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &conv, nil
}

// ListByUserID returns the user's conversations, most recently updated
// first, each carrying only its latest message for preview
func (r *ConversationRepo) ListByUserID(ctx context.Context, userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	for i := range convs {
		var last model.Message
		err := r.db.WithContext(ctx).
			Where("conversation_id = ?", convs[i].ID).
			Order("id DESC").
			First(&last).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		convs[i].Messages = []model.Message{last}
	}

	return convs, nil
}

// Delete removes an owned conversation and all its messages atomically
func (r *ConversationRepo) Delete(ctx context.Context, conversationID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
}
