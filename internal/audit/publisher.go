// Package audit publishes account activity events to a Redis stream.
//
// Publishing is fire-and-forget: a slow or unavailable Redis never blocks or
// fails the request that produced the event.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamKey is the Redis stream for account events.
	StreamKey = "stream:account_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Event actions.
const (
	ActionRegister       = "register"
	ActionLoginSuccess   = "login_success"
	ActionLoginFailure   = "login_failure"
	ActionFederatedLogin = "federated_login"
	ActionProfileEdit    = "profile_edit"
	ActionPhotoUpload    = "photo_upload"
)

// Event is the compact account event format for the Redis stream.
type Event struct {
	Action string `json:"a"`
	UserID string `json:"uid,omitempty"`
	Email  string `json:"e,omitempty"`
	At     int64  `json:"t"` // Unix milliseconds
}

// Publisher enqueues account events.
type Publisher interface {
	// EmitAsync publishes without blocking the caller.
	// Errors are logged but never returned.
	EmitAsync(event Event)
}

// NoopPublisher discards all events. Used when Redis is not configured.
type NoopPublisher struct{}

// NewNoop returns a Publisher that discards all events.
func NewNoop() Publisher {
	return &NoopPublisher{}
}

// EmitAsync is a no-op.
func (n *NoopPublisher) EmitAsync(event Event) {}

// RedisPublisher enqueues account events to a capped Redis stream.
type RedisPublisher struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher creates a publisher writing to StreamKey.
func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{
		redis:  client,
		logger: logger.With("component", "audit.publisher"),
	}
}

// Publish adds an event to the stream synchronously.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) (string, error) {
	if event.At == 0 {
		event.At = time.Now().UnixMilli()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// EmitAsync publishes without blocking the caller.
func (p *RedisPublisher) EmitAsync(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish account event",
				"action", event.Action,
				"error", err,
			)
			return
		}

		p.logger.Debug("account event published",
			"action", event.Action,
			"stream_id", streamID,
		)
	}()
}
