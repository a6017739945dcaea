package server

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// SecretTokenHeader carries the secret set with setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateSize = 1 << 20

//go:embed static/index.html
var statusPage []byte

// StatsProvider reports aggregate numbers for the status page
type StatsProvider interface {
	UserCount(ctx context.Context) (int, error)
}

// UpdateProcessor runs the bot handlers for one update. *tele.Bot satisfies it.
type UpdateProcessor interface {
	ProcessUpdate(u tele.Update)
}

// Options configures optional parts of the server
type Options struct {
	// Bot, when set, enables the webhook endpoint
	Bot           UpdateProcessor
	WebhookPath   string
	WebhookSecret string
	Gatherer      prometheus.Gatherer
}

// Server serves the stats API, the status page and the Telegram webhook
type Server struct {
	stats  StatsProvider
	opts   Options
	logger *zap.Logger
}

// New creates a new server
func New(stats StatsProvider, opts Options, logger *zap.Logger) *Server {
	if opts.WebhookPath == "" {
		opts.WebhookPath = "/webhook"
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		stats:  stats,
		opts:   opts,
		logger: logger,
	}
}

// Router returns the HTTP handler with all routes registered
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleStatusPage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	if s.opts.Bot != nil {
		r.Post(s.opts.WebhookPath, s.handleWebhook)
	}
	return r
}

type statsResponse struct {
	UserCount int `json:"userCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statsBody returns the status code and JSON body of the stats endpoint
func (s *Server) statsBody(ctx context.Context) (int, []byte) {
	count, err := s.stats.UserCount(ctx)
	if err != nil {
		body, _ := json.Marshal(errorResponse{Error: "failed to count users"})
		return http.StatusInternalServerError, body
	}
	body, _ := json.Marshal(statsResponse{UserCount: count})
	return http.StatusOK, body
}

// processWebhook verifies and dispatches one update, returning the status code to answer with
func (s *Server) processWebhook(secret string, body []byte) int {
	if s.opts.Bot == nil {
		return http.StatusNotFound
	}
	if s.opts.WebhookSecret != "" &&
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.opts.WebhookSecret)) != 1 {
		s.logger.Warn("Webhook request with invalid secret token")
		return http.StatusUnauthorized
	}

	var update tele.Update
	if err := json.Unmarshal(body, &update); err != nil {
		s.logger.Warn("Failed to decode webhook update", zap.Error(err))
		return http.StatusBadRequest
	}

	s.opts.Bot.ProcessUpdate(update)
	return http.StatusOK
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	status, body := s.statsBody(r.Context())
	writeJSON(w, status, body)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateSize))
	if err != nil {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(s.processWebhook(r.Header.Get(SecretTokenHeader), body))
}

func (s *Server) handleStatusPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(statusPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
