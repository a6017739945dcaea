package service

import (
	"context"
	"fmt"
	"strings"

	"askbot/internal/domain"
	"askbot/internal/i18n"
	"askbot/internal/metrics"
	"askbot/internal/repository"

	"go.uber.org/zap"
)

// CallbackReply is the answer shown on a pressed inline button
type CallbackReply struct {
	Text  string
	Alert bool
}

// ConversationService drives the registration state machine and routes
// every other message to search, broadcast or echo.
type ConversationService struct {
	users     *UserService
	states    repository.StateRepository
	auth      *Authorizer
	search    *SearchService
	broadcast *BroadcastService
	messenger Messenger
	catalog   *i18n.Catalog
	logger    *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	users *UserService,
	states repository.StateRepository,
	auth *Authorizer,
	search *SearchService,
	broadcast *BroadcastService,
	messenger Messenger,
	catalog *i18n.Catalog,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		users:     users,
		states:    states,
		auth:      auth,
		search:    search,
		broadcast: broadcast,
		messenger: messenger,
		catalog:   catalog,
		logger:    logger,
	}
}

// Start greets the user and offers the language choice
func (s *ConversationService) Start(ctx context.Context, msg domain.Message) error {
	choices := make([]domain.Choice, 0, len(domain.Languages()))
	for _, lang := range domain.Languages() {
		choices = append(choices, domain.Choice{Label: lang.Label(), Token: string(lang)})
	}

	// The user's language is unknown until they pick one.
	return s.send(ctx, domain.Outgoing{
		ChatID:   msg.ChatID,
		Text:     s.catalog.T(domain.DefaultLanguage, i18n.KeyWelcome),
		Keyboard: domain.Keyboard{Choices: choices},
	})
}

// SelectLanguage stores the language chosen with an inline button and asks for the phone number
func (s *ConversationService) SelectLanguage(ctx context.Context, msg domain.Message, code string) (CallbackReply, error) {
	lang, err := s.users.SelectLanguage(ctx, msg.SenderID, msg.SenderHandle, code)
	if CodeOf(err) == ErrorInvalidInput {
		s.logger.Warn("Invalid language selected",
			zap.Int64("user_id", msg.SenderID),
			zap.String("code", code))
		current, lerr := s.users.Language(ctx, msg.SenderID)
		if lerr != nil {
			current = domain.DefaultLanguage
		}
		return CallbackReply{Text: s.catalog.T(current, i18n.KeyInvalidLanguage), Alert: true}, nil
	}
	if err != nil {
		return CallbackReply{}, err
	}

	if err := s.setState(ctx, msg.SenderID, domain.StateAwaitingContact); err != nil {
		return CallbackReply{}, err
	}

	s.logger.Info("Language selected",
		zap.Int64("user_id", msg.SenderID),
		zap.String("language", string(lang)))

	return CallbackReply{}, s.askContact(ctx, msg.ChatID, lang)
}

// BeginBroadcast switches the admin into broadcasting mode
func (s *ConversationService) BeginBroadcast(ctx context.Context, msg domain.Message) error {
	lang, err := s.users.Language(ctx, msg.SenderID)
	if err != nil {
		return err
	}

	if s.auth.Authorize(msg.SenderID, ActionBroadcast) == Denied {
		s.logger.Warn("Broadcast denied", zap.Int64("user_id", msg.SenderID))
		return s.send(ctx, domain.Outgoing{
			ChatID: msg.ChatID,
			Text:   s.catalog.T(lang, i18n.KeyAdminOnly),
		})
	}

	if err := s.setState(ctx, msg.SenderID, domain.StateBroadcasting); err != nil {
		return err
	}
	return s.send(ctx, domain.Outgoing{
		ChatID: msg.ChatID,
		Text:   s.catalog.T(lang, i18n.KeyBroadcastStart),
	})
}

// HandleMessage reacts to any message that is not a known command
func (s *ConversationService) HandleMessage(ctx context.Context, msg domain.Message) error {
	state, err := s.states.GetState(ctx, msg.SenderID)
	if err != nil {
		return newError(ErrorInternal, "load state", err)
	}

	if state == domain.StateBroadcasting && s.auth.Authorize(msg.SenderID, ActionBroadcast) == Allowed {
		return s.finishBroadcast(ctx, msg)
	}

	switch {
	case msg.Contact != nil:
		return s.shareContact(ctx, msg)
	case !msg.HasText():
		return s.messenger.Copy(ctx, msg.ChatID, msg.ChatID, msg.MessageID)
	case strings.HasPrefix(msg.Text, "/"):
		s.logger.Debug("Ignoring unknown command",
			zap.Int64("user_id", msg.SenderID),
			zap.String("command", msg.Text))
		return nil
	default:
		return s.searchText(ctx, msg)
	}
}

func (s *ConversationService) shareContact(ctx context.Context, msg domain.Message) error {
	lang, err := s.users.Language(ctx, msg.SenderID)
	if err != nil {
		return err
	}

	if msg.Contact.UserID != 0 && msg.Contact.UserID != msg.SenderID {
		s.logger.Warn("Contact of another user shared",
			zap.Int64("user_id", msg.SenderID),
			zap.Int64("contact_user_id", msg.Contact.UserID))
		return s.askContact(ctx, msg.ChatID, lang)
	}

	err = s.users.SharePhone(ctx, msg.SenderID, msg.Contact.PhoneNumber)
	switch CodeOf(err) {
	case "":
	case ErrorNotFound:
		return s.send(ctx, domain.Outgoing{
			ChatID: msg.ChatID,
			Text:   s.catalog.T(lang, i18n.KeyNotRegistered),
		})
	case ErrorInvalidInput:
		return s.askContact(ctx, msg.ChatID, lang)
	default:
		return err
	}

	if err := s.setState(ctx, msg.SenderID, domain.StateIdle); err != nil {
		return err
	}
	metrics.IncUserRegistered()
	s.logger.Info("User registered", zap.Int64("user_id", msg.SenderID))

	return s.send(ctx, domain.Outgoing{
		ChatID:   msg.ChatID,
		Text:     s.catalog.T(lang, i18n.KeyRegistered),
		Keyboard: domain.Keyboard{Remove: true},
	})
}

func (s *ConversationService) finishBroadcast(ctx context.Context, msg domain.Message) error {
	// Idle before the fan-out: a redelivered update must not start a second run.
	if err := s.setState(ctx, msg.SenderID, domain.StateIdle); err != nil {
		return err
	}

	report, err := s.broadcast.Broadcast(ctx, msg.ChatID, msg.MessageID)
	if err != nil {
		// Nothing was delivered, so the next message may retry.
		if rerr := s.setState(ctx, msg.SenderID, domain.StateBroadcasting); rerr != nil {
			s.logger.Error("Failed to restore broadcasting state",
				zap.Int64("user_id", msg.SenderID),
				zap.Error(rerr))
		}
		return err
	}

	lang, err := s.users.Language(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	return s.send(ctx, domain.Outgoing{
		ChatID: msg.ChatID,
		Text:   s.catalog.T(lang, i18n.KeyBroadcastDone, report.Delivered),
	})
}

func (s *ConversationService) searchText(ctx context.Context, msg domain.Message) error {
	lang, err := s.users.Language(ctx, msg.SenderID)
	if err != nil {
		return err
	}

	if err := s.send(ctx, domain.Outgoing{
		ChatID: msg.ChatID,
		Text:   s.catalog.T(lang, i18n.KeySearching),
	}); err != nil {
		return err
	}

	results := s.search.Search(ctx, msg.Text)
	if len(results) == 0 {
		return s.send(ctx, domain.Outgoing{
			ChatID: msg.ChatID,
			Text:   s.catalog.T(lang, i18n.KeyNoResults),
		})
	}

	return s.send(ctx, domain.Outgoing{
		ChatID:      msg.ChatID,
		Text:        FormatResults(results),
		HTML:        true,
		LinkPreview: true,
	})
}

func (s *ConversationService) askContact(ctx context.Context, chatID int64, lang domain.Language) error {
	return s.send(ctx, domain.Outgoing{
		ChatID:   chatID,
		Text:     s.catalog.T(lang, i18n.KeyShareContact),
		Keyboard: domain.Keyboard{RequestContact: s.catalog.T(lang, i18n.KeyContactButton)},
	})
}

func (s *ConversationService) setState(ctx context.Context, telegramID int64, state domain.ConversationState) error {
	if err := s.states.SetState(ctx, telegramID, state); err != nil {
		return newError(ErrorInternal, "save state", err)
	}
	return nil
}

func (s *ConversationService) send(ctx context.Context, msg domain.Outgoing) error {
	if err := s.messenger.Send(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
