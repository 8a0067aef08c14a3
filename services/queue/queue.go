// Package queue carries scrape jobs on a Redis stream read through a
// consumer group, so several workers share one backlog.
package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobTypeDealScraping is the only job type the worker runs
const JobTypeDealScraping = "deal_scraping"

const payloadField = "job"

// Job asks a worker to scrape one restaurant
type Job struct {
	RestaurantID string    `json:"restaurant_id"`
	URL          string    `json:"url"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	JobType      string    `json:"job_type"`
}

// Delivery is a job read from the stream, acknowledged by its ID
type Delivery struct {
	ID  string
	Job Job
}

// Queue is the job transport used by the worker and the API
type Queue interface {
	Enqueue(ctx context.Context, job Job) (string, error)
	// Next blocks up to block for a job; it returns nil, nil on timeout
	Next(ctx context.Context, block time.Duration) (*Delivery, error)
	Ack(ctx context.Context, id string) error
}

// RedisQueue implements Queue on a Redis stream
type RedisQueue struct {
	client   redis.UniversalClient
	stream   string
	group    string
	consumer string
	now      func() time.Time
}

var _ Queue = (*RedisQueue)(nil)

// NewRedisQueue creates the consumer group if it does not exist yet
func NewRedisQueue(ctx context.Context, client redis.UniversalClient, stream, group, consumer string) (*RedisQueue, error) {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group %s: %w", group, err)
	}
	return &RedisQueue{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		now:      time.Now,
	}, nil
}

// Enqueue appends job and returns its stream ID
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.JobType == "" {
		job.JobType = JobTypeDealScraping
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Result()
}

func (q *RedisQueue) Next(ctx context.Context, block time.Duration) (*Delivery, error) {
	res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) == 0 || len(res[0].Messages) == 0 {
		return nil, nil
	}

	msg := res[0].Messages[0]
	job, err := decodeJob(msg.Values)
	if err != nil {
		// poison message, drop it so it is not redelivered forever
		q.client.XAck(ctx, q.stream, q.group, msg.ID)
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	return &Delivery{ID: msg.ID, Job: job}, nil
}

func (q *RedisQueue) Ack(ctx context.Context, id string) error {
	return q.client.XAck(ctx, q.stream, q.group, id).Err()
}

func decodeJob(values map[string]interface{}) (Job, error) {
	raw, ok := values[payloadField].(string)
	if !ok {
		return Job{}, fmt.Errorf("missing %q field", payloadField)
	}
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}
