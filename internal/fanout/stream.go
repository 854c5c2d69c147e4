package fanout

//go:generate go run go.uber.org/mock/mockgen -source=./stream.go -destination=./mocks/stream_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channelPrefix = "classbook:stream:"

// Publisher is the write side of the change stream. Domain services publish
// after every committed write.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Stream is the read side. Reconnection and backoff for the underlying
// transport are the stream's concern, not the subscriber's.
type Stream interface {
	Subscribe(ctx context.Context, collection string) (<-chan ChangeEvent, func(), error)
}

type RedisStream struct {
	client *redis.Client
}

// NewRedisStream builds the pub/sub change stream over the shared redis client.
func NewRedisStream(client *redis.Client) *RedisStream {
	return &RedisStream{client: client}
}

var _ Publisher = (*RedisStream)(nil)
var _ Stream = (*RedisStream)(nil)

func (s *RedisStream) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := s.client.Publish(ctx, channelPrefix+event.Collection, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	return nil
}

func (s *RedisStream) Subscribe(ctx context.Context, collection string) (<-chan ChangeEvent, func(), error) {
	pubsub := s.client.Subscribe(ctx, channelPrefix+collection)

	// Force the subscription onto the wire before reporting success.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()

		return nil, nil, fmt.Errorf("failed to subscribe to %s stream: %w", collection, err)
	}

	events := make(chan ChangeEvent)

	go func() {
		defer close(events)

		for msg := range pubsub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Str("collection", collection).Msg("dropping malformed change event")

				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}

	return events, cancel, nil
}
