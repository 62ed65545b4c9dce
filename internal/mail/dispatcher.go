package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher sends queued messages from a single background worker.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
	timeout  time.Duration

	mu     sync.RWMutex
	queue  chan Message
	closed bool
	done   chan struct{}
}

func NewDispatcher(notifier Notifier, size int, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		timeout:  30 * time.Second,
		queue:    make(chan Message, size),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue schedules msg for delivery. It never blocks; when the queue is full
// or the dispatcher is closed the message is dropped and false is returned.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("mail dispatcher closed, dropping message", zap.String("kind", string(msg.Kind)))
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("mail queue full, dropping message", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.notifier.Send(ctx, msg); err != nil {
			d.log.Error("mail delivery failed", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To), zap.Error(err))
		} else {
			d.log.Info("mail sent", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
		}
		cancel()
	}
}

// Close stops accepting messages and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
