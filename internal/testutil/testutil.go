package testutil

import (
	"fmt"

	"askbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestMessage creates a text message sent by userID in its private chat
func NewTestMessage(userID int64, text string) domain.Message {
	return domain.Message{
		ChatID:       userID,
		MessageID:    42,
		SenderID:     userID,
		SenderHandle: fmt.Sprintf("user%d", userID),
		Text:         text,
	}
}

// NewTestContact creates a message sharing the sender's own phone number
func NewTestContact(userID int64, phone string) domain.Message {
	msg := NewTestMessage(userID, "")
	msg.Contact = &domain.Contact{PhoneNumber: phone, UserID: userID}
	return msg
}

// NewTestResults creates n distinct search results
func NewTestResults(n int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, domain.SearchResult{
			Title:   fmt.Sprintf("Result %d", i),
			Link:    fmt.Sprintf("https://example.com/%d", i),
			Snippet: fmt.Sprintf("Snippet %d", i),
		})
	}
	return results
}
