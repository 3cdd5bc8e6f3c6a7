package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	eventsChannel = "session:events"
	revokedPrefix = "session:revoked:"
)

// RedisStore shares revocations and session events across API instances
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (r *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

func (r *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisStore) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, eventsChannel, payload).Err()
}

func (r *RedisStore) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, func()) {
	out := make(chan Event, subscriberBuffer)
	subCtx, stop := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(subCtx, eventsChannel)
	// Wait for the subscription to be confirmed so no event published
	// after Subscribe returns is missed
	if _, err := pubsub.Receive(subCtx); err != nil {
		r.logger.Warn("session subscription not confirmed", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					r.logger.Warn("dropping malformed session event", zap.Error(err))
					continue
				}
				if event.UserID != userID {
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			if err := pubsub.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				r.logger.Debug("closing session subscription", zap.Error(err))
			}
			wg.Wait()
		})
	}
	go func() {
		<-subCtx.Done()
		cancel()
	}()

	return out, cancel
}

// Ping checks the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
