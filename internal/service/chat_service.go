package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"solace/internal/ai"
	"solace/internal/model"
	"solace/internal/pkg/id"
	"solace/internal/repository"
)

// ModelGateway is the slice of the AI gateway the chat pipeline uses
type ModelGateway interface {
	Complete(ctx context.Context, history []model.Message) (string, error)
	StreamTokens(ctx context.Context, history []model.Message) (<-chan ai.Chunk, error)
}

// ChatService orchestrates authenticated chat: resolve the conversation,
// append the user message, load the persisted history, generate, persist
// the reply.
type ChatService struct {
	gateway  ModelGateway
	convRepo *repository.ConversationRepo
}

// NewChatService creates the chat orchestrator
func NewChatService(gateway ModelGateway, convRepo *repository.ConversationRepo) *ChatService {
	return &ChatService{
		gateway:  gateway,
		convRepo: convRepo,
	}
}

// Send handles the synchronous flow. If generation fails after the user
// message was appended, the message stays persisted: the user's own input
// is never lost.
func (s *ChatService) Send(ctx context.Context, userID string, req *model.ChatRequest) (*model.ChatResponse, error) {
	conv, err := s.resolve(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// Reload so the model sees exactly what is persisted, including the
	// just-appended message, not a client-held copy.
	conv, err = s.convRepo.GetByID(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.gateway.Complete(ctx, conv.Messages)
	if err != nil {
		return nil, err
	}

	msg, err := s.convRepo.AppendMessage(ctx, conv.ID, userID, model.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("conversation_id", conv.ID).
		Int("history_len", len(conv.Messages)).
		Msg("chat completed")

	return &model.ChatResponse{
		ConversationID: conv.ID,
		Message:        msg,
	}, nil
}

// Stream handles the streaming flow: same resolve/append/load steps, then
// deltas are relayed live and the accumulated text is persisted as one
// message when the stream ends. If the client disconnects before the
// terminal chunk, nothing is persisted; partial replies are dropped by
// design.
func (s *ChatService) Stream(ctx context.Context, userID string, req *model.ChatRequest) (<-chan model.StreamEvent, error) {
	conv, err := s.resolve(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	conv, err = s.convRepo.GetByID(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.gateway.StreamTokens(ctx, conv.Messages)
	if err != nil {
		return nil, err
	}

	events := make(chan model.StreamEvent)
	go func() {
		defer close(events)

		// Correlation id for the in-flight reply; the persisted id takes
		// over on the terminal event.
		pendingID := id.New()
		var acc strings.Builder

		send := func(ev model.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(model.StreamEvent{MessageID: pendingID}) {
			return
		}

		for chunk := range chunks {
			switch {
			case chunk.Err != nil:
				send(model.StreamEvent{Error: chunk.Err.Error(), Done: true})
				return

			case chunk.Done:
				msg, err := s.convRepo.AppendMessage(ctx, conv.ID, userID, model.RoleAssistant, acc.String())
				if err != nil {
					log.Error().Err(err).
						Str("conversation_id", conv.ID).
						Msg("failed to persist assistant reply")
					send(model.StreamEvent{Error: "failed to save response", Done: true})
					return
				}
				send(model.StreamEvent{
					MessageID:      strconv.Itoa(int(msg.ID)),
					ConversationID: conv.ID,
					Done:           true,
				})
				return

			default:
				acc.WriteString(chunk.Content)
				if !send(model.StreamEvent{MessageID: pendingID, Content: chunk.Content}) {
					return
				}
			}
		}
	}()

	return events, nil
}

// resolve appends the user message to an existing conversation, or creates
// a new one seeded with it. Creation records the first message in the same
// store call, so no separate append happens for brand-new conversations.
func (s *ChatService) resolve(ctx context.Context, userID string, req *model.ChatRequest) (*model.Conversation, error) {
	if req.ConversationID == "" {
		return s.convRepo.Create(ctx, userID, req.Message)
	}

	if _, err := s.convRepo.AppendMessage(ctx, req.ConversationID, userID, model.RoleUser, req.Message); err != nil {
		return nil, err
	}
	return &model.Conversation{ID: req.ConversationID, UserID: userID}, nil
}

// List returns the user's conversation summaries
func (s *ChatService) List(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.convRepo.ListByUserID(ctx, userID)
}

// Get returns one owned conversation with its ordered messages
func (s *ChatService) Get(ctx context.Context, conversationID, userID string) (*model.Conversation, error) {
	return s.convRepo.GetByID(ctx, conversationID, userID)
}

// Delete removes one owned conversation and its messages
func (s *ChatService) Delete(ctx context.Context, conversationID, userID string) error {
	return s.convRepo.Delete(ctx, conversationID, userID)
}
