package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"solace/internal/ai"
	"solace/internal/model"
	"solace/internal/repository"
)

// respondError converts pipeline errors into the closed taxonomy. Anything
// unrecognized becomes a generic 500; detail stays in the server logs.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "conversation not found"})
	case errors.Is(err, ai.ErrGenerationFailed):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "an error occurred while generating the response"})
	default:
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "an unexpected error occurred"})
	}
}
