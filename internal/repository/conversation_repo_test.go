package repository

import (
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"solace/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestConversationRepo_Create(t *testing.T) {
	Convey("Create persists a conversation with its first message", t, func() {
		repo := NewConversationRepo(openTestDB(t))
		ctx := context.Background()

		Convey("short first message becomes the title verbatim", func() {
			conv, err := repo.Create(ctx, "user-1", "hello there")
			So(err, ShouldBeNil)
			So(conv.Title, ShouldEqual, "hello there")
			So(conv.Messages, ShouldHaveLength, 1)
			So(conv.Messages[0].Role, ShouldEqual, model.RoleUser)
			So(conv.Messages[0].Content, ShouldEqual, "hello there")
		})

		Convey("long first message is truncated with an ellipsis", func() {
			long := strings.Repeat("a", 80)
			conv, err := repo.Create(ctx, "user-1", long)
			So(err, ShouldBeNil)
			So(conv.Title, ShouldEqual, strings.Repeat("a", 30)+"...")
			So(conv.Messages[0].Content, ShouldEqual, long)
		})
	})
}

func TestConversationRepo_AppendAndFetch(t *testing.T) {
	Convey("AppendMessage and GetByID", t, func() {
		repo := NewConversationRepo(openTestDB(t))
		ctx := context.Background()

		conv, err := repo.Create(ctx, "user-1", "first")
		So(err, ShouldBeNil)

		Convey("messages come back in append order", func() {
			_, err := repo.AppendMessage(ctx, conv.ID, "user-1", model.RoleAssistant, "second")
			So(err, ShouldBeNil)
			_, err = repo.AppendMessage(ctx, conv.ID, "user-1", model.RoleUser, "third")
			So(err, ShouldBeNil)

			got, err := repo.GetByID(ctx, conv.ID, "user-1")
			So(err, ShouldBeNil)
			So(got.Messages, ShouldHaveLength, 3)
			So(got.Messages[0].Content, ShouldEqual, "first")
			So(got.Messages[1].Content, ShouldEqual, "second")
			So(got.Messages[2].Content, ShouldEqual, "third")
		})

		Convey("stored content round-trips exactly, whitespace and unicode included", func() {
			content := "  line one\n\nline two\t🙂  "
			msg, err := repo.AppendMessage(ctx, conv.ID, "user-1", model.RoleAssistant, content)
			So(err, ShouldBeNil)

			got, err := repo.GetByID(ctx, conv.ID, "user-1")
			So(err, ShouldBeNil)
			So(got.Messages[len(got.Messages)-1].ID, ShouldEqual, msg.ID)
			So(got.Messages[len(got.Messages)-1].Content, ShouldEqual, content)
		})

		Convey("only the two permitted roles can author a message", func() {
			_, err := repo.AppendMessage(ctx, conv.ID, "user-1", model.Role("system"), "x")
			So(err, ShouldEqual, ErrInvalidRole)

			got, err := repo.GetByID(ctx, conv.ID, "user-1")
			So(err, ShouldBeNil)
			So(got.Messages, ShouldHaveLength, 1)
		})

		Convey("appending to a missing conversation returns not found", func() {
			_, err := repo.AppendMessage(ctx, "no-such-id", "user-1", model.RoleUser, "x")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("another user's conversation looks absent", func() {
			_, err := repo.AppendMessage(ctx, conv.ID, "user-2", model.RoleUser, "x")
			So(err, ShouldEqual, ErrNotFound)

			_, err = repo.GetByID(ctx, conv.ID, "user-2")
			So(err, ShouldEqual, ErrNotFound)
		})
	})
}

func TestConversationRepo_List(t *testing.T) {
	Convey("ListByUserID", t, func() {
		repo := NewConversationRepo(openTestDB(t))
		ctx := context.Background()

		first, err := repo.Create(ctx, "user-1", "older")
		So(err, ShouldBeNil)
		second, err := repo.Create(ctx, "user-1", "newer")
		So(err, ShouldBeNil)
		_, err = repo.Create(ctx, "user-2", "not mine")
		So(err, ShouldBeNil)

		Convey("returns only the caller's conversations, most recently updated first", func() {
			// touching the older conversation moves it to the front
			_, err := repo.AppendMessage(ctx, first.ID, "user-1", model.RoleAssistant, "reply")
			So(err, ShouldBeNil)

			convs, err := repo.ListByUserID(ctx, "user-1")
			So(err, ShouldBeNil)
			So(convs, ShouldHaveLength, 2)
			So(convs[0].ID, ShouldEqual, first.ID)
			So(convs[1].ID, ShouldEqual, second.ID)
		})

		Convey("each conversation carries only its latest message", func() {
			_, err := repo.AppendMessage(ctx, first.ID, "user-1", model.RoleAssistant, "latest reply")
			So(err, ShouldBeNil)

			convs, err := repo.ListByUserID(ctx, "user-1")
			So(err, ShouldBeNil)
			for _, c := range convs {
				So(c.Messages, ShouldHaveLength, 1)
			}
			So(convs[0].Messages[0].Content, ShouldEqual, "latest reply")
		})
	})
}

func TestConversationRepo_Delete(t *testing.T) {
	Convey("Delete", t, func() {
		db := openTestDB(t)
		repo := NewConversationRepo(db)
		ctx := context.Background()

		conv, err := repo.Create(ctx, "user-1", "to be deleted")
		So(err, ShouldBeNil)
		_, err = repo.AppendMessage(ctx, conv.ID, "user-1", model.RoleAssistant, "reply")
		So(err, ShouldBeNil)

		Convey("removes the conversation and all its messages", func() {
			So(repo.Delete(ctx, conv.ID, "user-1"), ShouldBeNil)

			_, err := repo.GetByID(ctx, conv.ID, "user-1")
			So(err, ShouldEqual, ErrNotFound)

			var count int64
			So(db.Model(&model.Message{}).Where("conversation_id = ?", conv.ID).Count(&count).Error, ShouldBeNil)
			So(count, ShouldEqual, 0)
		})

		Convey("another user's delete is refused and the data survives", func() {
			So(repo.Delete(ctx, conv.ID, "user-2"), ShouldEqual, ErrNotFound)

			got, err := repo.GetByID(ctx, conv.ID, "user-1")
			So(err, ShouldBeNil)
			So(got.Messages, ShouldHaveLength, 2)
		})
	})
}
