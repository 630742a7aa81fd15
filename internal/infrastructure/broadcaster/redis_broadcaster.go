package broadcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
)

// NewRedisClient builds the pub/sub client shared by every API instance.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})
}

func PingRedis(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}

// RedisBroadcaster publishes user events on "notifications:<user id>" so that
// whichever instance holds the user's websocket can deliver them.
type RedisBroadcaster struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisBroadcaster(client *redis.Client, logger zerolog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: client,
		logger: logger.With().Str("component", "redis_broadcaster").Logger(),
	}
}

func (r *RedisBroadcaster) Publish(ctx context.Context, userID string, event *entity.Event) error {
	payload, err := encode(userID, event)
	if err != nil {
		return err
	}

	result := r.client.Publish(ctx, channelFor(userID), payload)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Debug().
		Str("event_type", event.Type).
		Str("user_id", userID).
		Int64("subscriber_count", result.Val()).
		Msg("Published user event")
	return nil
}

// Run forwards every published user event to deliverer until ctx is done.
func (r *RedisBroadcaster) Run(ctx context.Context, deliverer Deliverer) error {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to Redis: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Info().Msg("Redis channel closed")
				return nil
			}
			userID, ok := userFromChannel(msg.Channel)
			if !ok {
				continue
			}
			deliverer.SendToUser(userID, []byte(msg.Payload))

		case <-ctx.Done():
			return nil
		}
	}
}

func (r *RedisBroadcaster) Close() error {
	return r.client.Close()
}
