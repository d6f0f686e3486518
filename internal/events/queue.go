package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/config"
)

// Queue is a Redis Streams backed event queue with at-least-once delivery.
// Each event type gets its own stream; consumers share a consumer group,
// acknowledge explicitly, and reclaim stale pending messages from crashed or
// stuck consumers. A message that keeps failing is dropped once its delivery
// count reaches MaxDeliveries.
type Queue struct {
	client *redis.Client
	cfg    config.QueueConfig
	logger *zap.Logger
}

// NewQueue creates the queue on an existing Redis client.
func NewQueue(client *redis.Client, cfg config.QueueConfig, logger *zap.Logger) *Queue {
	return &Queue{client: client, cfg: cfg, logger: logger}
}

// Publish appends the event to the stream for its type.
func (q *Queue) Publish(ctx context.Context, eventType EventType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamName(eventType),
		Values: map[string]any{
			"id":      uuid.NewString(),
			"type":    string(eventType),
			"ts":      time.Now().UTC().Format(time.RFC3339Nano),
			"payload": string(body),
		},
	}).Err()
}

// Consume processes events of one type until ctx is cancelled. It blocks;
// callers run it in a goroutine per event type.
func (q *Queue) Consume(ctx context.Context, eventType EventType, handler Handler) {
	stream := q.streamName(eventType)
	q.ensureGroup(ctx, stream)

	go q.reclaimLoop(ctx, stream, handler)

	block := time.Duration(q.cfg.BlockSeconds) * time.Second
	if block <= 0 {
		block = 5 * time.Second
	}

	for ctx.Err() == nil {
		res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.cfg.Group,
			Consumer: q.cfg.Consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			q.logger.Warn("queue read failed", zap.String("stream", stream), zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		for _, str := range res {
			for _, msg := range str.Messages {
				q.process(ctx, stream, msg, handler)
			}
		}
	}
}

// reclaimLoop periodically takes over pending messages whose consumer went
// quiet and redelivers them, dropping messages past the delivery cap.
func (q *Queue) reclaimLoop(ctx context.Context, stream string, handler Handler) {
	interval := time.Duration(q.cfg.ClaimIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 10 * time.Second
	}
	minIdle := time.Duration(q.cfg.ClaimIdleSec) * time.Second
	if minIdle <= 0 {
		minIdle = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: stream,
			Group:  q.cfg.Group,
			Start:  "-",
			End:    "+",
			Count:  50,
			Idle:   minIdle,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				q.logger.Warn("queue pending scan failed", zap.String("stream", stream), zap.Error(err))
			}
			continue
		}

		for _, entry := range pending {
			if q.cfg.MaxDeliveries > 0 && entry.RetryCount >= int64(q.cfg.MaxDeliveries) {
				q.logger.Error("dropping event after delivery cap",
					zap.String("stream", stream),
					zap.String("message_id", entry.ID),
					zap.Int64("deliveries", entry.RetryCount))
				q.ack(ctx, stream, entry.ID)
				continue
			}
			claimed, err := q.client.XClaim(ctx, &redis.XClaimArgs{
				Stream:   stream,
				Group:    q.cfg.Group,
				Consumer: q.cfg.Consumer,
				MinIdle:  minIdle,
				Messages: []string{entry.ID},
			}).Result()
			if err != nil {
				continue
			}
			for _, msg := range claimed {
				q.process(ctx, stream, msg, handler)
			}
		}
	}
}

func (q *Queue) process(ctx context.Context, stream string, msg redis.XMessage, handler Handler) {
	event, err := eventFromMessage(msg)
	if err != nil {
		q.logger.Error("malformed event dropped",
			zap.String("stream", stream),
			zap.String("message_id", msg.ID),
			zap.Error(err))
		q.ack(ctx, stream, msg.ID)
		return
	}

	err = handler(ctx, event)
	switch {
	case err == nil:
		q.ack(ctx, stream, msg.ID)
	case isNonRetriable(err):
		q.logger.Warn("event failed permanently",
			zap.String("stream", stream),
			zap.String("event_id", event.ID),
			zap.Error(err))
		q.ack(ctx, stream, msg.ID)
	default:
		// stays in the pending list; the reclaim loop redelivers it
		q.logger.Warn("event failed, will retry",
			zap.String("stream", stream),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func (q *Queue) ack(ctx context.Context, stream, messageID string) {
	if err := q.client.XAck(ctx, stream, q.cfg.Group, messageID).Err(); err != nil && ctx.Err() == nil {
		q.logger.Warn("queue ack failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (q *Queue) ensureGroup(ctx context.Context, stream string) {
	err := q.client.XGroupCreateMkStream(ctx, stream, q.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		q.logger.Warn("consumer group create failed", zap.String("stream", stream), zap.Error(err))
	}
}

func (q *Queue) streamName(eventType EventType) string {
	prefix := q.cfg.StreamPrefix
	if prefix == "" {
		prefix = "ticketflow:events"
	}
	return prefix + ":" + string(eventType)
}

func eventFromMessage(msg redis.XMessage) (Event, error) {
	event := Event{}
	id, _ := msg.Values["id"].(string)
	typ, _ := msg.Values["type"].(string)
	payload, _ := msg.Values["payload"].(string)
	if typ == "" || payload == "" {
		return event, errors.New("missing type or payload")
	}
	event.ID = id
	event.Type = EventType(typ)
	event.Payload = json.RawMessage(payload)
	if ts, ok := msg.Values["ts"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			event.Timestamp = parsed
		}
	}
	return event, nil
}

// isNonRetriable matches errors that signal the message must not be
// redelivered, without depending on the package that defines them.
func isNonRetriable(err error) bool {
	var nr interface{ NonRetriable() bool }
	return errors.As(err, &nr) && nr.NonRetriable()
}
