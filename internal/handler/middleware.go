package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"wedding-guest-list/internal/session"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SessionMiddleware loads the visitor's session from the cookie, or starts
// an anonymous one, and stores it in the gin context.
func SessionMiddleware(store session.Store, cookie CookieConfig) gin.HandlerFunc {
	log := logger.WithComponent("session")
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, _ := c.Cookie(cookie.Name)

		sess, err := store.Get(ctx, token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrSessionNotFound) {
				log.Error("failed to load session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			sess, err = store.Create(ctx, "")
			if err != nil {
				log.Error("failed to create session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			setSessionCookie(c, cookie, sess.Token)
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// RequireLogin sends anonymous visitors to the login page, or answers 401 on the JSON API.
func RequireLogin(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c).Authenticated() {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		addFlash(c, store, session.FlashWarning, "Please log in to access this page.")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func setSessionCookie(c *gin.Context, cookie CookieConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, token, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
}
