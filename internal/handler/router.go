package handler

import (
	"embed"
	"html/template"

	"wedding-guest-list/internal/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

//go:embed templates/*.html
var templateFS embed.FS

type RouterConfig struct {
	ServiceName string
	Cookie      CookieConfig
}

func NewRouter(cfg RouterConfig, guests *GuestHandler, auth *AuthHandler, store session.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), otelgin.Middleware(cfg.ServiceName))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.Use(SessionMiddleware(store, cfg.Cookie))
	auth.RegisterRoutes(r)

	protected := r.Group("/")
	protected.Use(RequireLogin(store))
	guests.RegisterRoutes(protected)

	r.NoRoute(notFound)
	return r
}
