// Package common holds the pieces every content handler shares: error mapping,
// path and query parsing, and the collection endpoints.
package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/platform/logger"
)

// StatusOf maps a service error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidArgument), errors.Is(err, apperr.ErrCycle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as {"error": ...}. Unexpected errors are logged and
// replaced by fallback so database details do not leak.
func RespondError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
