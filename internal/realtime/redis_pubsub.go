package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/store"
)

const (
	// ChangesChannel is the Redis channel carrying store changes between instances.
	ChangesChannel = "console:changes"
	publishTimeout = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance sync.
type redisPayload struct {
	Instance string       `json:"instance"`
	Change   store.Change `json:"change"`
	At       int64        `json:"at"`
}

// RedisPubSub implements ChangeBus using Redis pub/sub.
type RedisPubSub struct {
	client   *redis.Client
	instance string
	logger   *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge. instance tags outgoing messages so that an
// instance ignores its own changes.
func NewRedisPubSub(client *redis.Client, instance string, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, instance: instance, logger: logger}
}

// PublishChange publishes a change made by this instance.
func (r *RedisPubSub) PublishChange(ctx context.Context, change store.Change) error {
	body, err := json.Marshal(redisPayload{Instance: r.instance, Change: change, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, ChangesChannel, body).Err()
}

// SubscribeChanges calls handler for every change published by another instance.
// Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeChanges(ctx context.Context, handler func(store.Change)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(ctx, ChangesChannel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					r.logger.Debug("invalid change payload", zap.Error(err))
					continue
				}
				if p.Instance == r.instance {
					continue
				}
				handler(p.Change)
			}
		}
	}()
	return cancelCtx, nil
}
