package sse

import (
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriter(t *testing.T) {
	Convey("Writer", t, func() {
		rec := httptest.NewRecorder()

		w, err := NewWriter(rec)
		So(err, ShouldBeNil)

		Convey("sets the event-stream headers", func() {
			So(rec.Header().Get("Content-Type"), ShouldEqual, "text/event-stream")
			So(rec.Header().Get("Cache-Control"), ShouldEqual, "no-cache")
			So(rec.Header().Get("Connection"), ShouldEqual, "keep-alive")
			So(rec.Header().Get("X-Accel-Buffering"), ShouldEqual, "no")
		})

		Convey("frames each event as one data line plus a blank line", func() {
			type event struct {
				Content string `json:"content"`
				Done    bool   `json:"done"`
			}

			So(w.Send(event{Content: "hi"}), ShouldBeNil)
			So(w.Send(event{Done: true}), ShouldBeNil)

			So(rec.Body.String(), ShouldEqual,
				"data: {\"content\":\"hi\",\"done\":false}\n\n"+
					"data: {\"content\":\"\",\"done\":true}\n\n")
		})

		Convey("flushes after every event", func() {
			So(w.Send(map[string]string{"k": "v"}), ShouldBeNil)
			So(rec.Flushed, ShouldBeTrue)
		})
	})
}
