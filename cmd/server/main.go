package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-guest-list/config"
	"wedding-guest-list/internal/database"
	"wedding-guest-list/internal/handler"
	"wedding-guest-list/internal/service"
	"wedding-guest-list/internal/session"
	"wedding-guest-list/internal/telemetry"
	"wedding-guest-list/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	err := run()
	if err != nil {
		logger.WithComponent("main").Error("Server exited", zap.Error(err))
	}
	logger.L.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the app and blocks until a signal arrives or the listener fails.
// Every resource it opens is released before it returns.
func run() error {
	log := logger.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("Tracing shutdown failed", zap.Error(err))
		}
	}()

	repo, closeStorage, err := database.OpenGuestRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage %q: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("Storage close failed", zap.Error(err))
		}
	}()

	if err := repo.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize guest store: %w", err)
	}

	var store session.Store
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("initialize redis: %w", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL)
	}

	users, err := loginUsers(cfg)
	if err != nil {
		return fmt.Errorf("prepare users: %w", err)
	}
	authService, err := service.NewAuthService(users, store)
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}
	guestService := service.NewGuestService(repo)

	cookie := handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}
	router := handler.NewRouter(
		handler.RouterConfig{ServiceName: cfg.Telemetry.ServiceName, Cookie: cookie},
		handler.NewGuestHandler(guestService, store, cfg.Server.AppTitle),
		handler.NewAuthHandler(authService, store, cookie, cfg.Server.AppTitle),
		store,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("redis_sessions", cfg.Redis.Enabled),
	)
	if err := serve(ctx, srv, shutdownTimeout); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
// A listener failure is returned instead of ending the process.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loginUsers returns the configured users, or a single admin user hashed
// from GUESTLIST_ADMIN_PASSWORD when none are configured.
func loginUsers(cfg *config.Config) (map[string]string, error) {
	if len(cfg.Users) > 0 {
		return cfg.Users, nil
	}
	password := os.Getenv("GUESTLIST_ADMIN_PASSWORD")
	if password == "" {
		return nil, errors.New("no users configured and GUESTLIST_ADMIN_PASSWORD is not set")
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return nil, err
	}
	logger.WithComponent("main").Warn("No users configured, seeding admin from GUESTLIST_ADMIN_PASSWORD")
	return map[string]string{"admin": hash}, nil
}
