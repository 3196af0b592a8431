package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	apphttp "github.com/lusodesk/helpdesk-backend/internal/adapters/primary/http"
	"github.com/lusodesk/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lusodesk/helpdesk-backend/internal/adapters/primary/websocket"
	"github.com/lusodesk/helpdesk-backend/internal/adapters/secondary/email"
	"github.com/lusodesk/helpdesk-backend/internal/adapters/secondary/postgres"
	redisbridge "github.com/lusodesk/helpdesk-backend/internal/adapters/secondary/redis"
	"github.com/lusodesk/helpdesk-backend/internal/auth"
	"github.com/lusodesk/helpdesk-backend/internal/config"
	"github.com/lusodesk/helpdesk-backend/internal/core/services"
	"github.com/lusodesk/helpdesk-backend/internal/infrastructure/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting server", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg.Database.URL, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// Secondary adapters.
	userRepo := postgres.NewUserRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	notifier := email.NewMockSMTPNotifier(userRepo, logger)

	// Real-time layer. The registry tracks live sessions on this instance;
	// the optional Redis bridge relays events to sibling instances.
	registry := websocket.NewRegistry(logger)

	var bridge *redisbridge.Bridge
	if cfg.BridgeEnabled() {
		redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient := goredis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		bridge = redisbridge.NewBridge(redisClient, cfg.Redis.Channel, registry, logger)
		logger.Info("event bridge enabled", "channel", cfg.Redis.Channel)
	}

	var dispatcher *services.Dispatcher
	if bridge != nil {
		dispatcher = services.NewDispatcher(notificationRepo, registry, bridge, logger)
		go bridge.Run(ctx, dispatcher.InstanceID())
	} else {
		dispatcher = services.NewDispatcher(notificationRepo, registry, nil, logger)
	}
	go dispatcher.Run()
	defer dispatcher.Close()

	// Core services.
	recipients := services.NewRecipientResolver(userRepo)
	authService := services.NewAuthService(userRepo)
	ticketService := services.NewTicketService(ticketRepo, activityRepo, notifier, dispatcher, recipients, logger)
	commentService := services.NewCommentService(commentRepo, activityRepo, ticketService, notifier, dispatcher, recipients, logger)
	notificationService := services.NewNotificationService(notificationRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	adminService := services.NewAdminService(userRepo)

	// Primary adapters.
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	errorHandler := apphttp.NewErrorHandler(logger)

	commentHandler := apphttp.NewCommentHandler(commentService, errorHandler, logger)
	wsHandler := websocket.NewHandler(tokenManager, registry, cfg.WebSocket, cfg.IsDevelopment(), logger)

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Config:       cfg,
		TokenManager: tokenManager,

		HealthHandler:       apphttp.NewHealthHandler(cfg.App.Version),
		AuthHandler:         apphttp.NewAuthHandler(authService, tokenManager, errorHandler, logger),
		MeHandler:           apphttp.NewMeHandler(userRepo, errorHandler, logger),
		TicketHandler:       apphttp.NewTicketHandler(ticketService, commentHandler, errorHandler, logger),
		NotificationHandler: apphttp.NewNotificationHandler(notificationService, errorHandler, logger),
		CategoryHandler:     apphttp.NewCategoryHandler(categoryService, errorHandler, logger),
		AdminHandler:        apphttp.NewAdminHandler(adminService, errorHandler, logger),
		WebSocketHandler:    wsHandler,

		RequestLogger:  middleware.RequestLogger(logger),
		RecoveryLogger: middleware.RecoveryLogger(logger),
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	mig, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema up to date")
			return nil
		}
		return err
	}

	logger.Info("database migrations applied")
	return nil
}
