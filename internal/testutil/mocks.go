package testutil

import (
	"context"

	"askbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetLanguage(ctx context.Context, telegramID int64) (domain.Language, bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(domain.Language), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) UpsertLanguage(ctx context.Context, telegramID int64, username string, lang domain.Language) error {
	args := m.Called(ctx, telegramID, username, lang)
	return args.Error(0)
}

func (m *MockUserRepository) SetPhone(ctx context.Context, telegramID int64, phone string) error {
	args := m.Called(ctx, telegramID, phone)
	return args.Error(0)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockStateRepository is a mock for StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) GetState(ctx context.Context, telegramID int64) (domain.ConversationState, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(domain.ConversationState), args.Error(1)
}

func (m *MockStateRepository) SetState(ctx context.Context, telegramID int64, state domain.ConversationState) error {
	args := m.Called(ctx, telegramID, state)
	return args.Error(0)
}

// MockMessenger is a mock for the outbound Telegram port
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, msg domain.Outgoing) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessenger) Copy(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	args := m.Called(ctx, toChatID, fromChatID, messageID)
	return args.Error(0)
}

// MockSearcher is a mock for the web search client
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}
