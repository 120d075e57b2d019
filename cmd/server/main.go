// Command taskhub-server starts the Taskhub REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/taskhub/internal/config"
	"github.com/and161185/taskhub/internal/limiter"
	"github.com/and161185/taskhub/internal/migrate"
	"github.com/and161185/taskhub/internal/repository/postgres"
	"github.com/and161185/taskhub/internal/server/httpapi"
	"github.com/and161185/taskhub/internal/service"
	"github.com/and161185/taskhub/internal/token"
	"github.com/and161185/taskhub/internal/validate"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves HTTP until a signal arrives.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	tokenRepo := postgres.NewTokenRepo(db)
	taskRepo := postgres.NewTaskRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)
	noteRepo := postgres.NewNoteRepo(db)

	var lim limiter.Limiter = limiter.Nop{}
	if cfg.LoginMaxFails > 0 {
		lim = limiter.NewPG(db.Pool, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	}

	// Services
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTTL)
	svc := httpapi.Services{
		Auth:       service.NewAuthService(userRepo, tokenRepo, issuer, lim, service.WithLogger(logger.Named("auth"))),
		Tasks:      service.NewTaskService(taskRepo, categoryRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Notes:      service.NewNoteService(noteRepo),
	}

	v, err := validate.Default()
	if err != nil {
		logger.Fatal("load schemas", zap.Error(err))
	}

	api := httpapi.New(svc, v, db, logger, httpapi.Options{
		CookieAuth:   cfg.CookieAuth,
		CookieSecure: cfg.CookieSecure,
		CORSOrigins:  cfg.CORSOrigins,
		TrustProxy:   cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSCert != "" {
			logger.Info("listening (TLS)", zap.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			db.Close()
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
