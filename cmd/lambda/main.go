package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"askbot/internal/app"
	"askbot/internal/config"
	"askbot/internal/database"
	"askbot/internal/logging"
	"askbot/internal/paramstore"
	"askbot/internal/repository"
	dynamorepo "askbot/internal/repository/dynamodb"
	"askbot/internal/repository/memory"
	redisrepo "askbot/internal/repository/redis"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, level, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// ---- Configuration ----
	if os.Getenv("BOT_MODE") == "" {
		os.Setenv("BOT_MODE", string(config.ModeLambda))
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := logging.SetLevel(level, cfg.LogLevel); err != nil {
		logger.Warn("Keeping default log level", zap.Error(err))
	}

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	params, err := paramstore.New(ssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.Fatal("Failed to create SSM client", zap.Error(err))
	}
	if err := cfg.ResolveSecrets(ctx, params); err != nil {
		logger.Fatal("Failed to resolve secrets", zap.Error(err))
	}

	// ---- Clients ----
	// Cold starts should fail fast rather than wait a minute for the database.
	db, err := database.Connect(cfg.DSN(), database.RetryPolicy{MaxRetries: 3, Delay: time.Second}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	states, err := newStateRepository(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Fatal("Failed to create state store", zap.Error(err))
	}

	// ---- Handler ----
	a, err := app.New(app.Deps{
		Config: cfg,
		DB:     db,
		States: states,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize bot", zap.Error(err))
	}

	logger.Info("Lambda handler ready")
	lambda.Start(a.Server.HandleLambda)
}

// newStateRepository prefers DynamoDB, then Redis. In-memory state does not
// survive between invocations and is only useful for a single warm container.
func newStateRepository(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (repository.StateRepository, error) {
	switch {
	case cfg.State.Table != "":
		logger.Info("Using DynamoDB conversation state", zap.String("table", cfg.State.Table))
		return dynamorepo.NewStateRepo(dynamodb.NewFromConfig(awsCfg), cfg.State.Table, cfg.State.TTL)
	case cfg.Redis.Addr != "":
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis conversation state", zap.String("addr", cfg.Redis.Addr))
		return redisrepo.NewStateRepo(client, cfg.State.TTL), nil
	default:
		logger.Warn("STATE_TABLE and REDIS_ADDR are unset, conversation state is per container")
		return memory.NewStateRepo(), nil
	}
}
