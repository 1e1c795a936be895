package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"solace/internal/model"
	"solace/internal/pkg/cache"
)

// GuestCounter counts guest exchanges per key within a rolling window
type GuestCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// GuestLimit caps guest exchanges per client IP inside a rolling window.
// The counter lives in Redis so the cap holds across instances. If the
// counter is unavailable the request is let through rather than blocking
// all guests.
func GuestLimit(counter GuestCounter, maxExchanges int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.GuestCountKey(c.ClientIP())

		count, err := counter.IncrWindow(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Msg("guest limit counter unavailable")
			c.Next()
			return
		}

		if count > int64(maxExchanges) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error: "guest limit reached, please sign in to continue",
			})
			return
		}

		c.Next()
	}
}
