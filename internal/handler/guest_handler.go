package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wedding-guest-list/internal/model"
	"wedding-guest-list/internal/service"
	"wedding-guest-list/internal/session"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GuestHandler struct {
	service  service.GuestService
	store    session.Store
	appTitle string
}

func NewGuestHandler(service service.GuestService, store session.Store, appTitle string) *GuestHandler {
	return &GuestHandler{
		service:  service,
		store:    store,
		appTitle: appTitle,
	}
}

func (h *GuestHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/dashboard", h.Dashboard)
	r.POST("/add_guest", h.AddGuest)
	r.POST("/update_guest/:id", h.UpdateGuest)
	r.POST("/delete_guest/:id", h.DeleteGuest)

	r.GET("/api/stats", h.Stats)
	r.GET("/api/v1/guests", h.List)
	r.GET("/api/v1/guests/:id", h.Get)
	r.POST("/api/v1/guests", h.Create)
	r.PUT("/api/v1/guests/:id", h.Update)
	r.DELETE("/api/v1/guests/:id", h.Delete)
}

/* HTML form routes */

func (h *GuestHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		logger.WithComponent("handler").Error("failed to load dashboard", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"AppTitle": h.appTitle,
		"Username": currentSession(c).Username,
		"Flashes":  popFlashes(c, h.store),
		"Guests":   dashboard.Guests,
		"Stats":    dashboard.Stats,
	})
}

func (h *GuestHandler) AddGuest(c *gin.Context) {
	defer c.Redirect(http.StatusFound, "/dashboard")

	input, ok := guestFromForm(c)
	if !ok {
		addFlash(c, h.store, session.FlashDanger, "Invalid guest data. Please check your inputs.")
		return
	}

	guest, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.flashError(c, err, "adding")
		return
	}
	addFlash(c, h.store, session.FlashSuccess, fmt.Sprintf("Guest %q added successfully!", guest.Name))
}

func (h *GuestHandler) UpdateGuest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}
	defer c.Redirect(http.StatusFound, "/dashboard")

	input, ok := guestFromForm(c)
	if !ok {
		addFlash(c, h.store, session.FlashDanger, "Invalid guest data. Please check your inputs.")
		return
	}

	guest, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		h.flashError(c, err, "updating")
		return
	}
	addFlash(c, h.store, session.FlashSuccess, fmt.Sprintf("Guest %q updated successfully!", guest.Name))
}

func (h *GuestHandler) DeleteGuest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}
	defer c.Redirect(http.StatusFound, "/dashboard")

	guest, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.flashError(c, err, "deleting")
		return
	}
	addFlash(c, h.store, session.FlashSuccess, fmt.Sprintf("Guest %q deleted successfully!", guest.Name))
}

func (h *GuestHandler) flashError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrGuestNotFound):
		addFlash(c, h.store, session.FlashWarning, "Guest not found.")
	case errors.Is(err, apperrors.ErrConstraintViolation):
		addFlash(c, h.store, session.FlashDanger, "Invalid guest data. Please check your inputs.")
	default:
		logger.WithComponent("handler").Error("guest operation failed", zap.String("action", action), zap.Error(err))
		addFlash(c, h.store, session.FlashDanger, fmt.Sprintf("Error %s guest, please try again.", action))
	}
}

// guestFromForm reads the guest form. ok is false when count is not an integer;
// everything else is validated by the service.
func guestFromForm(c *gin.Context) (model.GuestInput, bool) {
	count, err := strconv.Atoi(strings.TrimSpace(c.PostForm("count")))
	if err != nil {
		return model.GuestInput{}, false
	}
	return model.GuestInput{
		Name:       c.PostForm("name"),
		Count:      count,
		Side:       model.Side(c.PostForm("side")),
		Attendance: model.Attendance(c.PostForm("attendance")),
	}, true
}

/* JSON API */

func (h *GuestHandler) Stats(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		handleError(c, err, "Stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *GuestHandler) List(c *gin.Context) {
	guests, err := h.service.List(c.Request.Context())
	if err != nil {
		handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, guests)
}

func (h *GuestHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	guest, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Get")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (h *GuestHandler) Create(c *gin.Context) {
	var req model.GuestInput
	if err := BindJson(c, &req); err != nil {
		return
	}
	guest, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, guest)
}

func (h *GuestHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	var req model.GuestInput
	if err := BindJson(c, &req); err != nil {
		return
	}
	guest, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (h *GuestHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	if _, err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}
