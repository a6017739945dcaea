package memory

import (
	"context"
	"sync"

	"askbot/internal/domain"
)

// StateRepo keeps conversation states in process memory.
// States are lost on restart, which is fine for long polling.
type StateRepo struct {
	states map[int64]domain.ConversationState
	mu     sync.RWMutex
}

// NewStateRepo creates an empty in-memory state store
func NewStateRepo() *StateRepo {
	return &StateRepo{states: make(map[int64]domain.ConversationState)}
}

// GetState returns user's current state
func (r *StateRepo) GetState(_ context.Context, telegramID int64) (domain.ConversationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[telegramID]
	if !exists {
		return domain.StateIdle, nil
	}
	return state, nil
}

// SetState sets user's state; idle removes the entry
func (r *StateRepo) SetState(_ context.Context, telegramID int64, state domain.ConversationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state == domain.StateIdle {
		delete(r.states, telegramID)
		return nil
	}
	r.states[telegramID] = state
	return nil
}
