package auth

import (
	"solace/internal/service"
)

// Handler groups the auth endpoints around the auth service
type Handler struct {
	authService *service.AuthService
}

// NewHandler creates the auth handler
func NewHandler(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}
