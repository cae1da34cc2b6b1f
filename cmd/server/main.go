package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnhub/internal/api"
	"learnhub/internal/blog"
	"learnhub/internal/config"
	"learnhub/internal/logging"
	"learnhub/internal/tcpsync"
	"learnhub/internal/user"
	"learnhub/internal/websocket"
	"learnhub/pkg/database"
	"learnhub/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	usersDoc := database.NewDocument[models.UsersDocument](backend, "users", logger)
	blogsDoc := database.NewDocument[models.BlogsDocument](backend, "blogs", logger)

	if cfg.SeedBlogs != "" {
		seed, err := database.LoadBlogsFromJSON(cfg.SeedBlogs)
		if err != nil {
			return err
		}
		n, err := database.SeedBlogs(ctx, blogsDoc, seed)
		if err != nil {
			return err
		}
		logger.Info("seeded blogs", zap.Int("count", n), zap.String("file", cfg.SeedBlogs))
	}

	var hasher user.PasswordHasher = user.PlainHasher{}
	if cfg.HashPasswords {
		hasher = user.BcryptHasher{}
	}

	opts := []api.Option{}

	if cfg.ProgressFeed {
		progressCh := make(chan models.ProgressUpdate, 100)
		tcpServer := tcpsync.New(cfg.TCPAddr, progressCh, logger)
		go func() {
			if err := tcpServer.Start(); err != nil {
				logger.Error("progress feed stopped", zap.Error(err))
			}
		}()
		defer func() { _ = tcpServer.Close() }()
		opts = append(opts, api.WithProgressEvents(progressCh))
	}

	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Close()
	opts = append(opts, api.WithBlogFeed(hub, websocket.HandleBlogFeed(hub)))

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(user.NewRepo(usersDoc, hasher), blog.NewRepo(blogsDoc), logger, opts...)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", zap.String("addr", httpServer.Addr), zap.String("storage", cfg.Storage))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg *config.Config) (database.Backend, error) {
	if cfg.Storage == config.StorageSQLite {
		return database.NewSQLiteBackend(ctx, cfg.SQLitePath)
	}
	return database.NewFileBackend(cfg.DataDir)
}
