package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"askbot/internal/domain"

	"github.com/go-redis/redis/v8"
)

// redisAPI is the subset of *redis.Client used by StateRepo
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ redisAPI = (*redis.Client)(nil)

// StateRepo manages conversation state in Redis so it survives restarts
// and is shared between webhook replicas.
type StateRepo struct {
	client redisAPI
	ttl    time.Duration
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// NewStateRepo creates a state store; states expire after ttl of inactivity
func NewStateRepo(client redisAPI, ttl time.Duration) *StateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StateRepo{client: client, ttl: ttl}
}

func stateKey(telegramID int64) string {
	return fmt.Sprintf("conv_state:%d", telegramID)
}

// GetState returns the stored state or idle when nothing is stored
func (r *StateRepo) GetState(ctx context.Context, telegramID int64) (domain.ConversationState, error) {
	val, err := r.client.Get(ctx, stateKey(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.StateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}

	state := domain.ConversationState(val)
	if !state.Valid() {
		return domain.StateIdle, nil
	}
	return state, nil
}

// SetState stores a state; idle deletes the key
func (r *StateRepo) SetState(ctx context.Context, telegramID int64, state domain.ConversationState) error {
	key := stateKey(telegramID)
	if state == domain.StateIdle {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
		return nil
	}
	if err := r.client.Set(ctx, key, string(state), r.ttl).Err(); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}
