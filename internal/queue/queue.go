// Package queue carries build events from the message API to the worker
// over a redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const popTimeout = 5 * time.Second

// BuildEvent is the inbound trigger for one build turn, emitted after the
// USER message has been durably recorded.
type BuildEvent struct {
	ProjectID string `json:"project_id"`
	Value     string `json:"value"`
}

type Queue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

// Publish appends one event to the queue.
func (q *Queue) Publish(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue build event: %w", err)
	}
	return nil
}

// Next blocks for the next event, returning (nil, nil) when the wait times
// out so callers can loop and re-check their context.
func (q *Queue) Next(ctx context.Context) (*BuildEvent, error) {
	vals, err := q.client.BRPop(ctx, popTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue build event: %w", err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply of length %d", len(vals))
	}

	var ev BuildEvent
	if err := json.Unmarshal([]byte(vals[1]), &ev); err != nil {
		return nil, fmt.Errorf("decode build event: %w", err)
	}
	return &ev, nil
}

// Len returns the number of pending events.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
