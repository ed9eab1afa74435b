package handler

import (
	"errors"
	"fmt"
	"net/http"

	"wedding-guest-list/internal/service"
	"wedding-guest-list/internal/session"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth     service.AuthService
	store    session.Store
	cookie   CookieConfig
	appTitle string
}

func NewAuthHandler(auth service.AuthService, store session.Store, cookie CookieConfig, appTitle string) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		store:    store,
		cookie:   cookie,
		appTitle: appTitle,
	}
}

func (h *AuthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
}

func (h *AuthHandler) Index(c *gin.Context) {
	if currentSession(c).Authenticated() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	sess, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.WithComponent("handler").Error("login failed", zap.Error(err))
			addFlash(c, h.store, session.FlashDanger, "Login is unavailable, please try again.")
			h.renderLogin(c, http.StatusInternalServerError)
			return
		}
		addFlash(c, h.store, session.FlashDanger, "Invalid username or password.")
		h.renderLogin(c, http.StatusOK)
		return
	}

	// drop the anonymous session; the logged in one gets a fresh token
	if old := currentSession(c); old != nil {
		if err := h.auth.Logout(c.Request.Context(), old.Token); err != nil {
			logger.WithComponent("handler").Warn("failed to drop anonymous session", zap.Error(err))
		}
	}
	setSessionCookie(c, h.cookie, sess.Token)
	c.Set(sessionContextKey, sess)

	addFlash(c, h.store, session.FlashSuccess, fmt.Sprintf("Welcome back, %s!", sess.Username))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	username := "User"
	if sess := currentSession(c); sess != nil {
		if sess.Username != "" {
			username = sess.Username
		}
		if err := h.auth.Logout(ctx, sess.Token); err != nil {
			handleError(c, err, "Logout")
			return
		}
	}

	anon, err := h.store.Create(ctx, "")
	if err != nil {
		handleError(c, err, "Logout")
		return
	}
	setSessionCookie(c, h.cookie, anon.Token)
	c.Set(sessionContextKey, anon)

	addFlash(c, h.store, session.FlashInfo, fmt.Sprintf("Goodbye, %s!", username))
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int) {
	c.HTML(status, "login.html", gin.H{
		"AppTitle": h.appTitle,
		"Flashes":  popFlashes(c, h.store),
	})
}
