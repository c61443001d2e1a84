// Package notify fans lifecycle notifications out to a fixed pool of
// workers. Services enqueue after their store commit; delivery never runs
// inside a lock-held critical section.
package notify

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/api/metrics"
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Sink is where dispatched notifications land.
type Sink interface {
	Notify(ctx context.Context, in ports.NotifyInput) (*domain.Notification, error)
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient id, guaranteeing per-recipient delivery ordering.
type Dispatcher struct {
	workers []chan ports.NotifyInput
	sink    Sink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.NotifyInput, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotifyInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a notification to the worker responsible for its recipient.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(in ports.NotifyInput) {
	metrics.NotificationsDispatchedTotal.WithLabelValues(string(in.Kind)).Inc()
	d.workers[d.shardIndex(in.RecipientUserID)] <- in
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotifyInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			if _, err := d.sink.Notify(ctx, in); err != nil {
				d.log.Error().Err(err).
					Str("recipient", in.RecipientUserID).
					Str("kind", string(in.Kind)).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
