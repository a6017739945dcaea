package handler

import (
	"askbot/internal/domain"
	"askbot/internal/middleware"
	"askbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot          *tele.Bot
	conversation *service.ConversationService
	logger       *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	conversation *service.ConversationService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		conversation: conversation,
		logger:       logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(middleware.Recover(h.logger), middleware.Logging(h.logger))

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/broadcast", h.handleBroadcast)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnLanguage, h.handleLanguage)
	h.bot.Handle(tele.OnCallback, h.handleCallback)

	// Everything else goes through the conversation
	for _, event := range messageEvents {
		h.bot.Handle(event, h.handleMessage)
	}
}

// Events routed to the conversation. Unknown commands arrive as OnText.
var messageEvents = []string{
	tele.OnText,
	tele.OnContact,
	tele.OnMedia,
	tele.OnLocation,
	tele.OnVenue,
	tele.OnPoll,
	tele.OnDice,
}

// btnLanguage carries the language code as callback data
var btnLanguage = tele.Btn{Unique: "lang"}

// messageFromContext reduces a telebot update to the fields the conversation reacts to
func messageFromContext(c tele.Context) domain.Message {
	var msg domain.Message

	if sender := c.Sender(); sender != nil {
		msg.SenderID = sender.ID
		msg.SenderHandle = sender.Username
	}
	if chat := c.Chat(); chat != nil {
		msg.ChatID = chat.ID
	}
	if msg.ChatID == 0 {
		msg.ChatID = msg.SenderID
	}

	if m := c.Message(); m != nil {
		msg.MessageID = m.ID
		msg.Text = m.Text
		if m.Contact != nil {
			msg.Contact = &domain.Contact{
				PhoneNumber: m.Contact.PhoneNumber,
				UserID:      m.Contact.UserID,
			}
		}
	}
	return msg
}
