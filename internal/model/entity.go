package model

import (
	"time"
)

// Conversation is a titled, owned, ordered sequence of messages
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36" json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message is one immutable turn in a conversation. The auto-increment id
// makes display order identical to commit order.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"index;size:36" json:"conversationId"`
	Role           Role      `gorm:"size:16" json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Role is the author of a message, a closed two-value enumeration
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid checks the role is one of the two permitted values
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// titleMaxRunes is how much of the first message becomes the title
const titleMaxRunes = 30

// DeriveTitle builds a conversation title from its first user message
func DeriveTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= titleMaxRunes {
		return firstMessage
	}
	return string(runes[:titleMaxRunes]) + "..."
}
