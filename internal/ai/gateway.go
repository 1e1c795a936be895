// Package ai wraps the external completion service. All vendor specifics,
// including delta-shape differences between providers, stop at this
// boundary: callers see plain text chunks and a single opaque failure mode.
package ai

import (
	"context"
	"errors"
	"io"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"solace/internal/ai/component"
	"solace/internal/config"
	"solace/internal/model"
)

// ErrGenerationFailed is the only error callers see for upstream failures
var ErrGenerationFailed = errors.New("failed to generate response")

// systemPrompt is the assistant's fixed persona. Configuration baked in,
// not user-settable.
const systemPrompt = `You are an empathetic AI companion designed to help users process and release negative emotions like stress, anger, and frustration.
Your primary goal is to provide emotional relief through supportive conversation.

Guidelines:
- Listen actively and validate the user's feelings without judgment
- Ask thoughtful questions to help users explore their emotions
- Offer perspective and gentle reframing when appropriate
- Suggest practical coping strategies when relevant
- Maintain a warm, supportive tone throughout the conversation
- Focus on emotional processing rather than solving practical problems
- Never dismiss or minimize the user's feelings
- Respect privacy and maintain confidentiality

Remember that your purpose is to help users feel heard, understood, and emotionally relieved.`

// ChatModel is the slice of the eino model surface the gateway needs
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
	Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error)
}

// Chunk is one token-event of a streamed completion. Zero or more content
// chunks are followed by exactly one terminal chunk: Done on success, Err on
// failure. The channel is closed after the terminal chunk.
type Chunk struct {
	Content string
	Done    bool
	Err     error
}

// Gateway adapts the configured chat model to the chat pipeline
type Gateway struct {
	model   ChatModel
	timeout time.Duration
}

// NewGateway creates a gateway for the configured provider
func NewGateway(ctx context.Context, cfg *config.AIConfig) (*Gateway, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		model:   chatModel,
		timeout: cfg.Timeout,
	}, nil
}

// NewGatewayWithModel creates a gateway around an existing model
func NewGatewayWithModel(chatModel ChatModel, timeout time.Duration) *Gateway {
	return &Gateway{model: chatModel, timeout: timeout}
}

// Complete requests a full completion for the ordered history
func (g *Gateway) Complete(ctx context.Context, history []model.Message) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.model.Generate(ctx, buildMessages(history))
	if err != nil {
		log.Error().Err(err).Msg("model generate failed")
		return "", ErrGenerationFailed
	}

	return resp.Content, nil
}

// StreamTokens requests an incremental completion for the ordered history.
// The returned channel yields normalized content chunks and is closed after
// its terminal chunk. The underlying model stream is released on every exit
// path: completion, upstream error, or context cancellation.
func (g *Gateway) StreamTokens(ctx context.Context, history []model.Message) (<-chan Chunk, error) {
	ctx, cancel := g.withTimeout(ctx)

	reader, err := g.model.Stream(ctx, buildMessages(history))
	if err != nil {
		cancel()
		log.Error().Err(err).Msg("model stream failed to open")
		return nil, ErrGenerationFailed
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer cancel()
		defer reader.Close()

		for {
			msg, err := reader.Recv()
			if errors.Is(err, io.EOF) {
				select {
				case ch <- Chunk{Done: true}:
				case <-ctx.Done():
				}
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("model stream failed")
				select {
				case ch <- Chunk{Err: ErrGenerationFailed}:
				case <-ctx.Done():
				}
				return
			}

			// Normalization point: only plain text deltas are forwarded.
			// Tool calls and other structured delta kinds are dropped so
			// downstream code never branches on vendor shapes.
			if msg.Content == "" {
				continue
			}

			select {
			case ch <- Chunk{Content: msg.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// buildMessages converts persisted history into the model's message format,
// prepending the fixed system prompt
func buildMessages(history []model.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}
	return messages
}
