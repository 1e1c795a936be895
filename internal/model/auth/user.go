package auth

import (
	"time"
)

// User account. The ID is a UUID string generated at registration.
type User struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Username    string     `gorm:"uniqueIndex;size:50" json:"username"`
	Email       string     `gorm:"uniqueIndex;size:255" json:"email"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
