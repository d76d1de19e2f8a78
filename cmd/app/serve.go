package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"study_garden/internal/api"
	"study_garden/internal/catalog"
	"study_garden/internal/clock"
	"study_garden/internal/events"
	"study_garden/internal/middleware"
	"study_garden/internal/notify"
	"study_garden/internal/random"
	"study_garden/internal/repository"
	"study_garden/internal/service"
	"study_garden/pkg/auth"
	"study_garden/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, cfg *Config) error {
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()

	if _, err = repo.Migrate(ctx); err != nil {
		return err
	}

	seed := cfg.Rewards.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rnd := random.NewSeeded(seed)

	cat, err := catalog.New(cfg.Rewards.Catalog, rnd)
	if err != nil {
		return fmt.Errorf("invalid reward catalog: %w", err)
	}
	zapLogger.Info("Reward catalog ready", zap.Int("entries", cat.Len()), zap.Uint64("seed", seed))

	hub := events.NewHub()
	publishers := events.Fanout{hub}

	if cfg.Notifications.Telegram {
		notifier, err := notify.NewTelegramNotifier(notify.Config{
			BotToken: cfg.TelegramAuth.TelegramBotToken,
			Debug:    cfg.TelegramAuth.DebugMode,
		})
		if err != nil {
			return err
		}
		go notifier.Run(ctx)
		publishers = append(publishers, notifier)
	}

	clk := clock.System{}
	rewardService := service.NewRewardService(repo, cat, rnd, clk, publishers)
	taskService := service.NewTaskService(repo, rewardService, clk)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	if cfg.TelegramAuth.DebugMode {
		zapLogger.Warn("Telegram auth debug mode is on, init data signatures are not checked")
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewTaskRoutes(a, taskService, telegramAuth)
	api.NewRewardRoutes(a, rewardService, telegramAuth)
	api.NewEventRoutes(a, hub, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
