package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"solace/internal/model"
	"solace/internal/pkg/ctxutil"
	"solace/internal/pkg/sse"
	"solace/internal/service"
)

// ChatHandler serves the chat endpoints: guest streaming, authenticated
// streaming, and the synchronous send variant
type ChatHandler struct {
	chatSvc  *service.ChatService
	guestSvc *service.GuestService
}

// NewChatHandler creates the chat handler
func NewChatHandler(chatSvc *service.ChatService, guestSvc *service.GuestService) *ChatHandler {
	return &ChatHandler{
		chatSvc:  chatSvc,
		guestSvc: guestSvc,
	}
}

// Guest streams a one-shot reply for an unauthenticated caller.
// GET /api/v1/chat/guest?message=...
func (h *ChatHandler) Guest(c *gin.Context) {
	message := c.Query("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "message is required"})
		return
	}

	events, err := h.guestSvc.Stream(c.Request.Context(), message)
	if err != nil {
		respondError(c, err)
		return
	}

	relayEvents(c, events)
}

// Stream streams a reply into an owned conversation.
// GET /api/v1/chat/stream?message=...&conversationId=...
func (h *ChatHandler) Stream(c *gin.Context) {
	message := c.Query("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "message is required"})
		return
	}

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}

	req := &model.ChatRequest{
		Message:        message,
		ConversationID: c.Query("conversationId"),
	}

	events, err := h.chatSvc.Stream(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	relayEvents(c, events)
}

// Send handles the non-streaming variant.
// POST /api/v1/chat {message, conversationId?}
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "message is required"})
		return
	}

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}

	resp, err := h.chatSvc.Send(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// relayEvents pushes stream events onto the wire until the channel closes
// or the client goes away. The service stops producing once the request
// context is canceled.
func relayEvents(c *gin.Context, events <-chan model.StreamEvent) {
	w, err := sse.NewWriter(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "streaming unsupported"})
		return
	}

	for ev := range events {
		if err := w.Send(ev); err != nil {
			log.Debug().Err(err).Msg("event stream client went away")
			return
		}
	}
}
