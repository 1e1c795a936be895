package service

import (
	"context"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"solace/internal/ai"
	"solace/internal/model"
	"solace/internal/repository"
)

// fakeGateway scripts the model's behavior for a test
type fakeGateway struct {
	reply  string
	err    error
	chunks []ai.Chunk

	history []model.Message
}

func (f *fakeGateway) Complete(_ context.Context, history []model.Message) (string, error) {
	f.history = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) StreamTokens(_ context.Context, history []model.Message) (<-chan ai.Chunk, error) {
	f.history = history
	if f.err != nil {
		return nil, f.err
	}

	ch := make(chan ai.Chunk)
	go func() {
		defer close(ch)
		for _, c := range f.chunks {
			ch <- c
		}
	}()
	return ch, nil
}

func newTestRepo(t *testing.T) *repository.ConversationRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewConversationRepo(db)
}

func TestChatService_Send(t *testing.T) {
	Convey("Send", t, func() {
		repo := newTestRepo(t)
		ctx := context.Background()

		Convey("without a conversation id it starts a new conversation", func() {
			gw := &fakeGateway{reply: "I hear you."}
			svc := NewChatService(gw, repo)

			resp, err := svc.Send(ctx, "user-1", &model.ChatRequest{Message: "rough day"})
			So(err, ShouldBeNil)
			So(resp.ConversationID, ShouldNotBeEmpty)
			So(resp.Message.Role, ShouldEqual, model.RoleAssistant)
			So(resp.Message.Content, ShouldEqual, "I hear you.")

			conv, err := repo.GetByID(ctx, resp.ConversationID, "user-1")
			So(err, ShouldBeNil)
			So(conv.Messages, ShouldHaveLength, 2)
			So(conv.Messages[0].Content, ShouldEqual, "rough day")
			So(conv.Messages[1].Content, ShouldEqual, "I hear you.")
		})

		Convey("with a conversation id it appends and sends the full history", func() {
			gw := &fakeGateway{reply: "first reply"}
			svc := NewChatService(gw, repo)

			resp, err := svc.Send(ctx, "user-1", &model.ChatRequest{Message: "one"})
			So(err, ShouldBeNil)

			gw.reply = "second reply"
			_, err = svc.Send(ctx, "user-1", &model.ChatRequest{
				Message:        "two",
				ConversationID: resp.ConversationID,
			})
			So(err, ShouldBeNil)

			gw.reply = "third reply"
			_, err = svc.Send(ctx, "user-1", &model.ChatRequest{
				Message:        "three",
				ConversationID: resp.ConversationID,
			})
			So(err, ShouldBeNil)

			// the third call saw all five prior turns in order
			So(gw.history, ShouldHaveLength, 5)
			So(gw.history[0].Content, ShouldEqual, "one")
			So(gw.history[1].Content, ShouldEqual, "first reply")
			So(gw.history[2].Content, ShouldEqual, "two")
			So(gw.history[3].Content, ShouldEqual, "second reply")
			So(gw.history[4].Content, ShouldEqual, "three")

			roles := []model.Role{
				model.RoleUser, model.RoleAssistant,
				model.RoleUser, model.RoleAssistant,
				model.RoleUser,
			}
			for i, want := range roles {
				So(gw.history[i].Role, ShouldEqual, want)
			}

			conv, err := repo.GetByID(ctx, resp.ConversationID, "user-1")
			So(err, ShouldBeNil)
			So(conv.Messages, ShouldHaveLength, 6)
		})

		Convey("a generation failure keeps the user message", func() {
			gw := &fakeGateway{err: ai.ErrGenerationFailed}
			svc := NewChatService(gw, repo)

			seed, err := repo.Create(ctx, "user-1", "seed")
			So(err, ShouldBeNil)

			_, err = svc.Send(ctx, "user-1", &model.ChatRequest{
				Message:        "please answer",
				ConversationID: seed.ID,
			})
			So(err, ShouldEqual, ai.ErrGenerationFailed)

			conv, err := repo.GetByID(ctx, seed.ID, "user-1")
			So(err, ShouldBeNil)
			So(conv.Messages, ShouldHaveLength, 2)
			So(conv.Messages[1].Content, ShouldEqual, "please answer")
		})

		Convey("a foreign conversation id reads as not found", func() {
			gw := &fakeGateway{reply: "nope"}
			svc := NewChatService(gw, repo)

			seed, err := repo.Create(ctx, "user-1", "mine")
			So(err, ShouldBeNil)

			_, err = svc.Send(ctx, "user-2", &model.ChatRequest{
				Message:        "let me in",
				ConversationID: seed.ID,
			})
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestChatService_Stream(t *testing.T) {
	Convey("Stream", t, func() {
		repo := newTestRepo(t)
		ctx := context.Background()

		Convey("relays every delta and persists the accumulated text once", func() {
			gw := &fakeGateway{chunks: []ai.Chunk{
				{Content: "Take "},
				{Content: "a "},
				{Content: "breath."},
				{Done: true},
			}}
			svc := NewChatService(gw, repo)

			events, err := svc.Stream(ctx, "user-1", &model.ChatRequest{Message: "so angry"})
			So(err, ShouldBeNil)

			var all []model.StreamEvent
			for ev := range events {
				all = append(all, ev)
			}

			// open marker, three deltas, terminal
			So(all, ShouldHaveLength, 5)
			So(all[0].Content, ShouldBeEmpty)
			So(all[0].Done, ShouldBeFalse)

			var streamed string
			for _, ev := range all[1:4] {
				streamed += ev.Content
			}
			So(streamed, ShouldEqual, "Take a breath.")

			terminal := all[4]
			So(terminal.Done, ShouldBeTrue)
			So(terminal.ConversationID, ShouldNotBeEmpty)

			conv, err := repo.GetByID(ctx, terminal.ConversationID, "user-1")
			So(err, ShouldBeNil)
			So(conv.Messages, ShouldHaveLength, 2)
			So(conv.Messages[1].Role, ShouldEqual, model.RoleAssistant)
			So(conv.Messages[1].Content, ShouldEqual, streamed)
			So(terminal.MessageID, ShouldEqual, strconv.Itoa(int(conv.Messages[1].ID)))
		})

		Convey("an upstream failure becomes one error event and persists nothing extra", func() {
			gw := &fakeGateway{chunks: []ai.Chunk{
				{Content: "par"},
				{Err: ai.ErrGenerationFailed},
			}}
			svc := NewChatService(gw, repo)

			events, err := svc.Stream(ctx, "user-1", &model.ChatRequest{Message: "hello"})
			So(err, ShouldBeNil)

			var all []model.StreamEvent
			for ev := range events {
				all = append(all, ev)
			}

			last := all[len(all)-1]
			So(last.Done, ShouldBeTrue)
			So(last.Error, ShouldNotBeEmpty)

			convs, err := repo.ListByUserID(ctx, "user-1")
			So(err, ShouldBeNil)
			So(convs, ShouldHaveLength, 1)

			conv, err := repo.GetByID(ctx, convs[0].ID, "user-1")
			So(err, ShouldBeNil)
			// only the user message made it in
			So(conv.Messages, ShouldHaveLength, 1)
			So(conv.Messages[0].Role, ShouldEqual, model.RoleUser)
		})
	})
}
