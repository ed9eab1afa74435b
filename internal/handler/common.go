package handler

import (
	"errors"
	"net/http"
	"strconv"

	"wedding-guest-list/internal/session"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrGuestNotFound):
		log.Warn("Guest not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
	case errors.Is(err, apperrors.ErrConstraintViolation):
		log.Warn("Invalid guest data")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest data"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

// addFlash queues a message for the next rendered page. Failures only cost
// the message, so they are logged and otherwise ignored.
func addFlash(c *gin.Context, store session.Store, category, message string) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	if err := store.AddFlash(c.Request.Context(), sess.Token, session.Flash{Category: category, Message: message}); err != nil {
		logger.WithComponent("handler").Warn("failed to add flash", zap.Error(err))
	}
}

func popFlashes(c *gin.Context, store session.Store) []session.Flash {
	sess := currentSession(c)
	if sess == nil {
		return nil
	}
	flashes, err := store.PopFlashes(c.Request.Context(), sess.Token)
	if err != nil {
		logger.WithComponent("handler").Warn("failed to read flashes", zap.Error(err))
		return nil
	}
	return flashes
}
