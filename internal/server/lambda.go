package server

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CorrelationIDHeader is echoed on every Lambda response
const CorrelationIDHeader = "X-Correlation-Id"

// HandleLambda serves API Gateway proxy events with the same routes as Router
func (s *Server) HandleLambda(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := req.RequestContext.RequestID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := s.logger.With(zap.String("correlation_id", correlationID))

	path := strings.TrimSuffix(req.Path, "/")
	if path == "" {
		path = "/"
	}

	var resp events.APIGatewayProxyResponse
	switch {
	case req.HTTPMethod == http.MethodGet && path == "/api/stats":
		status, body := s.statsBody(ctx)
		resp = response(status, "application/json", string(body))

	case req.HTTPMethod == http.MethodGet && path == "/healthz":
		resp = response(http.StatusOK, "text/plain; charset=utf-8", "ok")

	case req.HTTPMethod == http.MethodGet && path == "/":
		resp = response(http.StatusOK, "text/html; charset=utf-8", string(statusPage))

	case req.HTTPMethod == http.MethodPost && path == s.opts.WebhookPath:
		if len(req.Body) > maxUpdateSize {
			resp = response(http.StatusRequestEntityTooLarge, "text/plain; charset=utf-8", "request too large")
			break
		}
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				resp = response(http.StatusBadRequest, "text/plain; charset=utf-8", "invalid body encoding")
				break
			}
			body = decoded
		}
		status := s.processWebhook(header(req.Headers, SecretTokenHeader), body)
		resp = response(status, "text/plain; charset=utf-8", http.StatusText(status))

	default:
		resp = response(http.StatusNotFound, "text/plain; charset=utf-8", "not found")
	}

	logger.Info("Lambda request served",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode))

	resp.Headers[CorrelationIDHeader] = correlationID
	return resp, nil
}

func response(status int, contentType, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentType},
		Body:       body,
	}
}

// header looks up name case-insensitively; API Gateway preserves the client's casing
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
