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

	"go.uber.org/zap"

	"github.com/librescript/backend/internal/ai"
	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/cache"
	"github.com/librescript/backend/internal/config"
	"github.com/librescript/backend/internal/database"
	"github.com/librescript/backend/internal/handlers"
	"github.com/librescript/backend/internal/logger"
	"github.com/librescript/backend/internal/mail"
	"github.com/librescript/backend/internal/server"
	"github.com/librescript/backend/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	mailQueueSize   = 256
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := cache.New(cfg, log)
	defer store.Close()

	notifier, err := mail.NewNotifier(cfg, log)
	if err != nil {
		return fmt.Errorf("init mail: %w", err)
	}
	dispatcher := mail.NewDispatcher(notifier, mailQueueSize, log)

	gormDB := db.GetDB()
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	verification := services.NewVerificationService(gormDB, dispatcher, store, cfg, log)

	handler := handlers.NewHandler(handlers.Deps{
		DB:           db,
		Users:        services.NewUserService(gormDB, issuer, verification),
		Posts:        services.NewPostService(gormDB, nil),
		Comments:     services.NewCommentService(gormDB, nil),
		Categories:   services.NewCategoryService(gormDB),
		Verification: verification,
		AI:           ai.NewClient(cfg.AIServiceURL, cfg.AITimeout),
		Log:          log,
	})
	srv := server.New(cfg, handler, issuer, log).NewServer()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Error("mail dispatcher drain", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
