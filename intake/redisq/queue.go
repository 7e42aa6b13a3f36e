package redisq

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelsud/webhook-exchange/intake"
)

/* Redis Streams implementation of intake.Queue
 * The stream only carries event IDs; Postgres holds the event bodies and is
 * the source of truth. Lost or duplicated stream messages are harmless since
 * the claim UPDATE in the repository decides who actually processes an event
 */

const (
	streamKey    = "events:stream"
	groupName    = "event-workers"
	consumeBlock = 1 * time.Second
	consumeBatch = 10
)

type Queue struct {
	client   *redis.Client
	consumer string
}

// NewQueue connects to Redis and ensures the consumer group exists
func NewQueue(addr, password string, db int, consumer string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	q := &Queue{client: client, consumer: consumer}
	q.ensureGroup(ctx)
	return q, nil
}

// NewQueueWithClient wraps an existing client, useful for tests
func NewQueueWithClient(client *redis.Client, consumer string) *Queue {
	q := &Queue{client: client, consumer: consumer}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.ensureGroup(ctx)
	return q
}

func (q *Queue) ensureGroup(ctx context.Context) {
	// Ignore error if group already exists
	q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0")
}

// Enqueue publishes an event ID notification to the stream
func (q *Queue) Enqueue(ctx context.Context, eventID string) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{"event_id": eventID},
	}).Err()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}
	return nil
}

// Consume reads a batch of pending notifications for this consumer
func (q *Queue) Consume(ctx context.Context) ([]intake.Message, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: q.consumer,
		Streams:  []string{streamKey, ">"},
		Count:    consumeBatch,
		Block:    consumeBlock,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	var messages []intake.Message
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			eventID, ok := msg.Values["event_id"].(string)
			if !ok {
				// Malformed entry, drop it so it does not stay pending forever
				q.client.XAck(ctx, streamKey, groupName, msg.ID)
				continue
			}
			messages = append(messages, intake.Message{ID: msg.ID, EventID: eventID})
		}
	}
	return messages, nil
}

// Ack removes a processed notification from the pending list
func (q *Queue) Ack(ctx context.Context, messageID string) error {
	if err := q.client.XAck(ctx, streamKey, groupName, messageID).Err(); err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}
	return nil
}

// Len reports the current stream length, used for queue depth metrics
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.XLen(ctx, streamKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (q *Queue) Close() error {
	return q.client.Close()
}
