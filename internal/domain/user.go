package domain

import "errors"

// ErrUserNotFound is returned when an operation targets a user that never registered
var ErrUserNotFound = errors.New("user not found")

// ConversationState represents user's current interaction state
type ConversationState string

const (
	StateIdle             ConversationState = "idle"
	StateAwaitingLanguage ConversationState = "awaiting_language"
	StateAwaitingContact  ConversationState = "awaiting_contact"
	StateBroadcasting     ConversationState = "broadcasting"
)

// Valid reports whether s is one of the known states
func (s ConversationState) Valid() bool {
	switch s {
	case StateIdle, StateAwaitingLanguage, StateAwaitingContact, StateBroadcasting:
		return true
	}
	return false
}
