package repository

import (
	"context"

	"askbot/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	// GetLanguage returns the stored language; found is false when the user has no row
	GetLanguage(ctx context.Context, telegramID int64) (lang domain.Language, found bool, err error)
	UpsertLanguage(ctx context.Context, telegramID int64, username string, lang domain.Language) error
	SetPhone(ctx context.Context, telegramID int64, phone string) error
	ListIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// StateRepository stores per-conversation state between updates
type StateRepository interface {
	// GetState returns domain.StateIdle for conversations without stored state
	GetState(ctx context.Context, telegramID int64) (domain.ConversationState, error)
	SetState(ctx context.Context, telegramID int64, state domain.ConversationState) error
}
