package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shelftrack/core"
)

// writeEngineError maps engine error kinds onto HTTP responses.
func writeEngineError(c *gin.Context, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, core.ErrDuplicateShelf):
		c.JSON(http.StatusConflict, gin.H{"error": core.ErrDuplicateShelf.Error()})
	case errors.Is(err, core.ErrPositionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": core.ErrPositionNotFound.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": core.ErrNotFound.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
