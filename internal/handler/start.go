package handler

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	msg := messageFromContext(c)

	h.logger.Info("User started bot",
		zap.Int64("user_id", msg.SenderID),
		zap.String("username", msg.SenderHandle),
	)

	return h.conversation.Start(context.Background(), msg)
}

// handleBroadcast handles /broadcast command
func (h *Handler) handleBroadcast(c tele.Context) error {
	return h.conversation.BeginBroadcast(context.Background(), messageFromContext(c))
}
