package middleware

import (
	"strings"
	"time"

	"askbot/internal/metrics"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logging records every update and logs the ones whose handler failed
func Logging(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			kind := UpdateKind(c)
			metrics.IncUpdate(kind)

			var userID int64
			if sender := c.Sender(); sender != nil {
				userID = sender.ID
			}

			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.Int("update_id", c.Update().ID),
				zap.Int64("user_id", userID),
				zap.String("kind", kind),
				zap.Duration("took", time.Since(start)),
			}
			if err != nil {
				logger.Error("Update handling failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Update handled", fields...)
			}
			return err
		}
	}
}

// UpdateKind classifies an update for logs and metrics
func UpdateKind(c tele.Context) string {
	if c.Callback() != nil {
		return "callback"
	}

	m := c.Message()
	switch {
	case m == nil:
		return "other"
	case m.Contact != nil:
		return "contact"
	case strings.HasPrefix(m.Text, "/"):
		return "command"
	case m.Text != "":
		return "text"
	default:
		return "media"
	}
}
