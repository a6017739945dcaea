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

	"askbot/internal/app"
	"askbot/internal/config"
	"askbot/internal/database"
	"askbot/internal/logging"
	"askbot/internal/paramstore"
	"askbot/internal/repository"
	"askbot/internal/repository/memory"
	redisrepo "askbot/internal/repository/redis"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, level, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := logging.SetLevel(level, cfg.LogLevel); err != nil {
		logger.Warn("Keeping default log level", zap.Error(err))
	}
	if cfg.Mode == config.ModeLambda {
		logger.Fatal("BOT_MODE=lambda is served by the lambda binary")
	}
	if cfg.AdminID == 0 {
		logger.Warn("ADMIN_ID is not set, /broadcast is disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ParamPrefix != "" {
		if err := resolveSecrets(ctx, cfg); err != nil {
			logger.Fatal("Failed to resolve secrets", zap.Error(err))
		}
	}

	logger.Info("Configuration loaded successfully", zap.String("mode", string(cfg.Mode)))

	// Connect to database with retries
	db, err := database.Connect(cfg.DSN(), database.DefaultRetryPolicy, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	states, closeStates, err := newStateRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create state store", zap.Error(err))
	}
	defer closeStates()

	deps := app.Deps{
		Config: cfg,
		DB:     db,
		States: states,
		Logger: logger,
	}
	if cfg.Mode == config.ModePolling {
		deps.Poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	a, err := app.New(deps)
	if err != nil {
		logger.Fatal("Failed to initialize bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	switch cfg.Mode {
	case config.ModePolling:
		// A registered webhook would make getUpdates fail.
		if err := a.Bot.RemoveWebhook(); err != nil {
			logger.Warn("Failed to remove webhook", zap.Error(err))
		}
		go func() {
			logger.Info("Bot started successfully (long polling)")
			a.Bot.Start()
		}()
	case config.ModeWebhook:
		if err := a.Bot.SetWebhook(&tele.Webhook{
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.WebhookURL},
			SecretToken: cfg.WebhookSecret,
		}); err != nil {
			logger.Fatal("Failed to set webhook", zap.Error(err))
		}
		logger.Info("Webhook registered", zap.String("url", cfg.WebhookURL))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	if cfg.Mode == config.ModePolling {
		a.Bot.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("Bot stopped gracefully")
}

// newStateRepository picks Redis when configured so state survives restarts
func newStateRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.StateRepository, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("Using in-memory conversation state")
		return memory.NewStateRepo(), func() {}, nil
	}

	client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using Redis conversation state", zap.String("addr", cfg.Redis.Addr))
	return redisrepo.NewStateRepo(client, cfg.State.TTL), func() { client.Close() }, nil
}

func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	params, err := paramstore.New(ssm.NewFromConfig(awsCfg))
	if err != nil {
		return err
	}
	return cfg.ResolveSecrets(ctx, params)
}
