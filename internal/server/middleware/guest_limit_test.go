package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeCounter counts in memory and can be made to fail
type fakeCounter struct {
	counts    map[string]int64
	err       error
	gotWindow time.Duration
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	f.gotWindow = window
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestGuestLimit(t *testing.T) {
	Convey("GuestLimit", t, func() {
		gin.SetMode(gin.TestMode)

		newRouter := func(counter GuestCounter) *gin.Engine {
			router := gin.New()
			router.GET("/guest", GuestLimit(counter, 2, time.Hour), func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})
			return router
		}

		doAs := func(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guest", nil)
			req.RemoteAddr = remoteAddr
			router.ServeHTTP(rec, req)
			return rec
		}

		Convey("allows requests up to the cap and refuses the next one", func() {
			counter := &fakeCounter{}
			router := newRouter(counter)

			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)

			third := doAs(router, "10.0.0.1:1111")
			So(third.Code, ShouldEqual, http.StatusTooManyRequests)
			So(third.Body.String(), ShouldContainSubstring, `"error"`)
			So(third.Body.String(), ShouldContainSubstring, "sign in")

			So(counter.gotWindow, ShouldEqual, time.Hour)
		})

		Convey("clients are counted separately", func() {
			router := newRouter(&fakeCounter{})

			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusTooManyRequests)

			// a different client still has its full allowance
			So(doAs(router, "10.0.0.2:2222").Code, ShouldEqual, http.StatusOK)
		})

		Convey("a counter failure lets the request through", func() {
			router := newRouter(&fakeCounter{err: errors.New("connection refused")})

			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
			So(doAs(router, "10.0.0.1:1111").Code, ShouldEqual, http.StatusOK)
		})
	})
}
