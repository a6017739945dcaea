package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"askbot/internal/metrics"
	"askbot/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type fakeStats struct {
	count int
	err   error
}

func (f fakeStats) UserCount(context.Context) (int, error) {
	return f.count, f.err
}

type recordingBot struct {
	updates []tele.Update
}

func (b *recordingBot) ProcessUpdate(u tele.Update) {
	b.updates = append(b.updates, u)
}

func newTestServer(stats StatsProvider, bot UpdateProcessor, secret string) *Server {
	reg := prometheus.NewRegistry()
	_ = metrics.Register(reg)

	opts := Options{WebhookSecret: secret, Gatherer: reg}
	if bot != nil {
		opts.Bot = bot
	}
	return New(stats, opts, testutil.NewTestLogger())
}

func TestServer_Stats(t *testing.T) {
	tests := []struct {
		name         string
		stats        fakeStats
		expectedCode int
		expectedBody string
	}{
		{
			name:         "count returned",
			stats:        fakeStats{count: 42},
			expectedCode: http.StatusOK,
			expectedBody: `{"userCount":42}`,
		},
		{
			name:         "empty store",
			stats:        fakeStats{},
			expectedCode: http.StatusOK,
			expectedBody: `{"userCount":0}`,
		},
		{
			name:         "store error",
			stats:        fakeStats{err: errors.New("db down")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"failed to count users"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.stats, nil, "")

			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestServer_StatusPageAndHealth(t *testing.T) {
	srv := newTestServer(fakeStats{}, nil, "")
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/stats")
	assert.Contains(t, rec.Body.String(), "5000")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(fakeStats{}, nil, "")
	metrics.IncUpdate("text")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bot_updates_received_total")
}

func TestServer_WebhookDisabledWithoutBot(t *testing.T) {
	srv := newTestServer(fakeStats{}, nil, "")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Webhook(t *testing.T) {
	const update = `{"update_id":7,"message":{"message_id":1,"from":{"id":123},"chat":{"id":123,"type":"private"},"text":"hello"}}`

	tests := []struct {
		name          string
		secret        string
		header        string
		body          string
		expectedCode  int
		expectUpdates int
	}{
		{name: "no secret configured", body: update, expectedCode: http.StatusOK, expectUpdates: 1},
		{name: "valid secret", secret: "s3cret", header: "s3cret", body: update, expectedCode: http.StatusOK, expectUpdates: 1},
		{name: "wrong secret", secret: "s3cret", header: "guess", body: update, expectedCode: http.StatusUnauthorized},
		{name: "missing secret", secret: "s3cret", body: update, expectedCode: http.StatusUnauthorized},
		{name: "malformed json", body: `{"update_id":`, expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &recordingBot{}
			srv := newTestServer(fakeStats{}, bot, tt.secret)

			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(SecretTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			require.Len(t, bot.updates, tt.expectUpdates)
			if tt.expectUpdates > 0 {
				assert.Equal(t, 7, bot.updates[0].ID)
				assert.Equal(t, "hello", bot.updates[0].Message.Text)
			}
		})
	}
}
