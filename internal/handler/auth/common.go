package auth

import (
	"time"

	"solace/internal/model/auth"
)

// ErrorResponse is the error body shared by all auth endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserInfo is the user shape returned by the auth endpoints
type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// toUserInfo converts the User entity into the response shape
func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	return info
}
