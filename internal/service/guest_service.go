package service

import (
	"context"
	"time"

	"solace/internal/model"
	"solace/internal/pkg/id"
)

// GuestService streams one-shot exchanges for unauthenticated callers:
// a single message, no history, no identity. Nothing it handles is ever
// written to the store.
type GuestService struct {
	gateway ModelGateway
	delay   time.Duration
}

// NewGuestService creates the guest stream adapter. delay is the artificial
// pause inserted after each relayed chunk.
func NewGuestService(gateway ModelGateway, delay time.Duration) *GuestService {
	return &GuestService{
		gateway: gateway,
		delay:   delay,
	}
}

// Stream opens a paced, ephemeral stream for one guest message. The
// exchange has no identity beyond its correlation tag and is discarded
// when the connection closes.
func (s *GuestService) Stream(ctx context.Context, message string) (<-chan model.StreamEvent, error) {
	history := []model.Message{{Role: model.RoleUser, Content: message}}

	chunks, err := s.gateway.StreamTokens(ctx, history)
	if err != nil {
		return nil, err
	}

	events := make(chan model.StreamEvent)
	go func() {
		defer close(events)

		tag := "guest-" + id.New()

		send := func(ev model.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(model.StreamEvent{MessageID: tag}) {
			return
		}

		for chunk := range chunks {
			switch {
			case chunk.Err != nil:
				send(model.StreamEvent{Error: chunk.Err.Error(), Done: true})
				return

			case chunk.Done:
				send(model.StreamEvent{MessageID: tag, Done: true})
				return

			default:
				if !send(model.StreamEvent{MessageID: tag, Content: chunk.Content}) {
					return
				}
				if s.delay > 0 {
					select {
					case <-time.After(s.delay):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return events, nil
}
