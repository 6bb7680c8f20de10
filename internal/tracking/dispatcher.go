package tracking

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	defaultQueueSize    = 256
	defaultWorkers      = 2
	defaultDrainTimeout = 5 * time.Second
)

// Sender posts wire events upstream.
type Sender interface {
	Send(ctx context.Context, events ...conversions.Event) (*conversions.Response, error)
}

type job struct {
	ctx   context.Context
	event Event
}

// DispatcherConfig sizes the background queue.
type DispatcherConfig struct {
	QueueSize    int
	Workers      int
	DrainTimeout time.Duration
}

// Dispatcher is the background Notifier: a bounded queue drained by a fixed
// worker pool. A full queue drops the event instead of blocking the caller.
type Dispatcher struct {
	sender       Sender
	queue        chan job
	workers      int
	drainTimeout time.Duration
	metrics      *metrics.StorefrontMetrics
	logg         *logger.Logger

	dropped atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher builds a dispatcher; call Run to start the workers.
func NewDispatcher(sender Sender, cfg DispatcherConfig, m *metrics.StorefrontMetrics, logg *logger.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	return &Dispatcher{
		sender:       sender,
		queue:        make(chan job, cfg.QueueSize),
		workers:      cfg.Workers,
		drainTimeout: cfg.DrainTimeout,
		metrics:      m,
		logg:         logg,
	}
}

// Notify enqueues event without blocking. The request context's values are
// kept for logging but its cancellation is not.
func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), event: event}:
		d.metrics.IncConversion(event.Name.String(), metrics.OutcomeEnqueued)
	default:
		d.dropped.Add(1)
		d.metrics.IncConversion(event.Name.String(), metrics.OutcomeDropped)
		if d.logg != nil {
			d.logg.Warn(d.logg.WithField(ctx, "event", event.Name.String()), "tracking.queue_full")
		}
	}
}

// Run processes the queue until ctx ends, then drains what is already
// buffered within the drain timeout. Sends made while draining are cut off at
// the drain deadline; Run reports an error when events are left behind.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range d.workers {
		wg.Go(func() { d.work(ctx) })
	}
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.drainTimeout)
	defer cancel()
	return d.drain(drainCtx)
}

func (d *Dispatcher) work(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case j := <-d.queue:
			d.deliver(context.Background(), j)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			if left := len(d.queue); left > 0 {
				return fmt.Errorf("drain tracking queue: %d events left: %w", left, err)
			}
			return nil
		}
		select {
		case j := <-d.queue:
			d.deliver(ctx, j)
		default:
			return nil
		}
	}
}

// deliver sends one job with the job's context values. The send is cancelled
// when bound ends.
func (d *Dispatcher) deliver(bound context.Context, j job) {
	ctx, cancel := context.WithCancel(j.ctx)
	defer cancel()
	defer context.AfterFunc(bound, cancel)()

	name := j.event.Name.String()
	if _, err := d.sender.Send(ctx, j.event.Wire()); err != nil {
		d.failed.Add(1)
		d.metrics.IncConversion(name, metrics.OutcomeFailed)
		if d.logg != nil {
			d.logg.Warn(d.logg.WithFields(ctx, map[string]any{"event": name, "error": err.Error()}), "tracking.send_failed")
		}
		return
	}
	d.sent.Add(1)
	d.metrics.IncConversion(name, metrics.OutcomeSent)
}

// Stats reports delivery counters since start.
func (d *Dispatcher) Stats() (sent, failed, dropped int64) {
	return d.sent.Load(), d.failed.Load(), d.dropped.Load()
}
