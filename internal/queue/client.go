package queue

import (
	"context"
	"sync"
)

// Client publishes procedure events to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder keeps sent messages in memory. Used when no queue is configured in
// dev, and by tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

var _ Client = (*Recorder)(nil)
