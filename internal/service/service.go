package service

import (
	"context"

	"askbot/internal/domain"
)

// Messenger delivers bot replies to Telegram chats
type Messenger interface {
	Send(ctx context.Context, msg domain.Outgoing) error
	// Copy re-sends message messageID of chat fromChatID into chat toChatID
	Copy(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}

// Searcher queries a web search backend
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
