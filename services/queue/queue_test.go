package queue

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJob(t *testing.T) {
	job, err := decodeJob(map[string]interface{}{
		"job": `{"restaurant_id":"r-1","url":"https://pub.example","enqueued_at":"2026-01-01T00:00:00Z","job_type":"deal_scraping"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", job.RestaurantID)
	assert.Equal(t, "https://pub.example", job.URL)
	assert.Equal(t, JobTypeDealScraping, job.JobType)

	_, err = decodeJob(map[string]interface{}{"other": "x"})
	assert.Error(t, err)
	_, err = decodeJob(map[string]interface{}{"job": "{"})
	assert.Error(t, err)
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	d, err := q.Next(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, d)

	id, err := q.Enqueue(ctx, Job{RestaurantID: "r-1"})
	require.NoError(t, err)

	d, err = q.Next(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, JobTypeDealScraping, d.Job.JobType)

	require.NoError(t, q.Ack(ctx, d.ID))
	assert.Equal(t, []string{id}, q.Acked())
}

// This test requires a running Redis instance
func TestRedisQueue(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	stream := "test_scrape_jobs"
	client.Del(ctx, stream)

	q, err := NewRedisQueue(ctx, client, stream, "test_group", "test_consumer")
	require.NoError(t, err)

	_, err = q.Enqueue(ctx, Job{RestaurantID: "r-1", URL: "https://pub.example"})
	require.NoError(t, err)

	d, err := q.Next(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "r-1", d.Job.RestaurantID)
	assert.False(t, d.Job.EnqueuedAt.IsZero())
	assert.NoError(t, q.Ack(ctx, d.ID))

	d, err = q.Next(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, d)
}
