package handler

import (
	"context"
	"fmt"
	"strconv"

	"askbot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// botAPI is the part of *tele.Bot the messenger needs
type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
}

// Messenger sends conversation replies through the Telegram Bot API
type Messenger struct {
	bot botAPI
}

// NewMessenger creates a messenger backed by bot
func NewMessenger(bot botAPI) *Messenger {
	return &Messenger{bot: bot}
}

// Send delivers a text message with its keyboard
func (m *Messenger) Send(ctx context.Context, msg domain.Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Send(tele.ChatID(msg.ChatID), msg.Text, sendOptions(msg)); err != nil {
		return fmt.Errorf("send to chat %d: %w", msg.ChatID, err)
	}
	return nil
}

// Copy re-sends a message without the "forwarded from" header
func (m *Messenger) Copy(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: fromChatID}
	if _, err := m.bot.Copy(tele.ChatID(toChatID), src); err != nil {
		return fmt.Errorf("copy message %d to chat %d: %w", messageID, toChatID, err)
	}
	return nil
}

func sendOptions(msg domain.Outgoing) *tele.SendOptions {
	opts := &tele.SendOptions{
		DisableWebPagePreview: !msg.LinkPreview,
		ReplyMarkup:           replyMarkup(msg.Keyboard),
	}
	if msg.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	return opts
}

func replyMarkup(kb domain.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb.Remove:
		return &tele.ReplyMarkup{RemoveKeyboard: true}

	case kb.RequestContact != "":
		menu := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
		menu.Reply(menu.Row(menu.Contact(kb.RequestContact)))
		return menu

	case len(kb.Choices) > 0:
		markup := &tele.ReplyMarkup{}
		rows := make([]tele.Row, 0, len(kb.Choices))
		for _, choice := range kb.Choices {
			rows = append(rows, markup.Row(markup.Data(choice.Label, btnLanguage.Unique, choice.Token)))
		}
		markup.Inline(rows...)
		return markup
	}
	return nil
}
