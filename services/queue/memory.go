package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue for tests
type MemoryQueue struct {
	mu      sync.Mutex
	seq     int
	pending []Delivery
	acked   []string
	notify  chan struct{}
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{notify: make(chan struct{}, 1)}
}

func (m *MemoryQueue) Enqueue(ctx context.Context, job Job) (string, error) {
	m.mu.Lock()
	m.seq++
	id := strconv.Itoa(m.seq)
	if job.JobType == "" {
		job.JobType = JobTypeDealScraping
	}
	m.pending = append(m.pending, Delivery{ID: id, Job: job})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return id, nil
}

func (m *MemoryQueue) Next(ctx context.Context, block time.Duration) (*Delivery, error) {
	timer := time.NewTimer(block)
	defer timer.Stop()
	for {
		m.mu.Lock()
		if len(m.pending) > 0 {
			d := m.pending[0]
			m.pending = m.pending[1:]
			m.mu.Unlock()
			return &d, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-m.notify:
		}
	}
}

func (m *MemoryQueue) Ack(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, id)
	return nil
}

// Pending returns the jobs not yet handed out
func (m *MemoryQueue) Pending() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]Job, 0, len(m.pending))
	for _, d := range m.pending {
		jobs = append(jobs, d.Job)
	}
	return jobs
}

// Acked returns acknowledged delivery IDs in order
func (m *MemoryQueue) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}
