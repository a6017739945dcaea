package handler

import (
	"context"

	tele "gopkg.in/telebot.v3"
)

// handleMessage handles text, contact and media messages
func (h *Handler) handleMessage(c tele.Context) error {
	if c.Sender() == nil || c.Message() == nil {
		return nil
	}
	return h.conversation.HandleMessage(context.Background(), messageFromContext(c))
}
