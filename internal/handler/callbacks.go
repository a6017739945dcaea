package handler

import (
	"context"
	"strings"
	"unicode"

	"askbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// languageFromCallback extracts the language code from raw callback data.
// Clients that drop the unique prefix send "lang|<code>".
func languageFromCallback(data string) (string, bool) {
	data = cleanCallbackData(data)
	if code, ok := strings.CutPrefix(data, btnLanguage.Unique+"|"); ok {
		return code, true
	}
	return "", false
}

// handleLanguage handles the language selection buttons
func (h *Handler) handleLanguage(c tele.Context) error {
	return h.selectLanguage(c, cleanCallbackData(c.Callback().Data))
}

func (h *Handler) selectLanguage(c tele.Context, code string) error {
	reply, err := h.conversation.SelectLanguage(context.Background(), messageFromContext(c), code)

	// The callback is answered even on failure so the client stops its spinner.
	if ackErr := c.Respond(callbackResponse(reply)); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles callback queries no button handler claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	if callback.Unique == "" {
		if code, ok := languageFromCallback(callback.Data); ok {
			return h.selectLanguage(c, code)
		}
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", cleanCallbackData(callback.Data)),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", messageFromContext(c).SenderID),
	)
	return c.Respond()
}

func callbackResponse(reply service.CallbackReply) *tele.CallbackResponse {
	return &tele.CallbackResponse{
		Text:      reply.Text,
		ShowAlert: reply.Alert,
	}
}
