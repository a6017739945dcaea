package app

import (
	"database/sql"
	"fmt"
	"net/url"

	"askbot/internal/config"
	"askbot/internal/handler"
	"askbot/internal/i18n"
	"askbot/internal/metrics"
	"askbot/internal/repository"
	"askbot/internal/repository/postgres"
	"askbot/internal/search"
	"askbot/internal/server"
	"askbot/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Deps are the resources an App is built from
type Deps struct {
	Config *config.Config
	DB     *sql.DB
	States repository.StateRepository
	Logger *zap.Logger
	// Poller is used in polling mode; webhook deployments leave it nil
	Poller tele.Poller
	// Registerer receives the bot metrics; nil means the default registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// Offline skips the getMe call, for tests
	Offline bool
}

// App is the wired bot together with its HTTP surface
type App struct {
	Bot    *tele.Bot
	Server *server.Server
}

// New wires repositories, services, bot handlers and the HTTP server
func New(d Deps) (*App, error) {
	cfg, logger := d.Config, d.Logger

	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	catalog, err := i18n.Load(i18n.LocalesFS)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	searchClient, err := search.NewClient(cfg.SerperAPIKey, cfg.SerperURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.BotToken,
		Poller:      d.Poller,
		Synchronous: true,
		Offline:     d.Offline,
		OnError:     logBotError(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(d.DB)

	// Initialize services
	messenger := handler.NewMessenger(bot)
	statsService := service.NewStatsService(userRepo, logger)
	conversation := service.NewConversationService(
		service.NewUserService(userRepo),
		d.States,
		service.NewAuthorizer(cfg.AdminID),
		service.NewSearchService(searchClient, logger),
		service.NewBroadcastService(userRepo, messenger, cfg.BroadcastConcurrency, logger),
		messenger,
		catalog,
		logger,
	)

	handler.NewHandler(bot, conversation, logger).RegisterHandlers()

	opts := server.Options{
		WebhookSecret: cfg.WebhookSecret,
		Gatherer:      d.Gatherer,
	}
	if cfg.Mode != config.ModePolling {
		opts.Bot = bot
		opts.WebhookPath = WebhookPath(cfg.WebhookURL)
	}

	return &App{
		Bot:    bot,
		Server: server.New(statsService, opts, logger),
	}, nil
}

// logBotError logs errors raised outside a handler, such as poller failures.
// Handler errors carry a context and are already logged by middleware.Logging.
func logBotError(logger *zap.Logger) func(error, tele.Context) {
	return func(err error, c tele.Context) {
		if c != nil {
			return
		}
		logger.Error("Bot error", zap.Error(err))
	}
}

// WebhookPath returns the path part of the public webhook URL, "/webhook" when it has none
func WebhookPath(webhookURL string) string {
	u, err := url.Parse(webhookURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/webhook"
	}
	return u.Path
}
