package authz

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// InvalidationPublisher announces cache invalidations to other replicas.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, userID int64, all bool) error
}

// invalidateAllMessage is the wildcard payload for a full cache flush.
const invalidateAllMessage = "*"

// Broadcaster fans cache invalidations out over a Redis pub/sub channel so
// that every replica honours the invalidate-on-mutation obligation, not just
// the one that handled the mutating request. The message payload is either
// the wildcard or a decimal user id.
type Broadcaster struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewBroadcaster constructs a Broadcaster on the given channel.
func NewBroadcaster(client *redis.Client, channel string, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{client: client, channel: channel, logger: logger}
}

// PublishInvalidation announces one invalidation.
func (b *Broadcaster) PublishInvalidation(ctx context.Context, userID int64, all bool) error {
	payload := invalidateAllMessage
	if !all {
		payload = strconv.FormatInt(userID, 10)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Listen applies incoming invalidations to the service's local cache until ctx
// is cancelled. Malformed payloads are logged and skipped. Run it in its own
// goroutine.
func (b *Broadcaster) Listen(ctx context.Context, service *Service) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() {
		if err := sub.Close(); err != nil {
			b.logger.Warn("close invalidation subscription", slog.Any("error", err))
		}
	}()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Payload == invalidateAllMessage {
				service.applyInvalidation(0, true)
				continue
			}
			userID, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				b.logger.Warn("malformed invalidation payload", slog.String("payload", msg.Payload))
				continue
			}
			service.applyInvalidation(userID, false)
		}
	}
}
