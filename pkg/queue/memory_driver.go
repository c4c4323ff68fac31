package queue

import (
	"context"
	"time"
)

// MemoryDriver is an in-process, channel-backed queue driver. Suited to
// development and tests; not durable across restarts.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates an in-memory queue buffering up to 1000 jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// PushDelayed makes the payload available after delay. Retries use this so
// workers stay free while a job waits out its backoff.
func (d *MemoryDriver) PushDelayed(payload []byte, delay time.Duration) error {
	time.AfterFunc(delay, func() {
		d.ch <- payload
	})
	return nil
}
