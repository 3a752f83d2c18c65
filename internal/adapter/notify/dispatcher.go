package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lendmatch/internal/domain/notification"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/infrastructure/metrics"
)

type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// Dispatcher delivers intents on background goroutines. Failures are logged
// and counted, never returned.
type Dispatcher struct {
	sender Sender
	log    logger.Logger
	opts   Options
	wg     sync.WaitGroup
}

func NewDispatcher(s Sender, log logger.Logger, opts Options) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Dispatcher{sender: s, log: log, opts: opts}
}

func (d *Dispatcher) Dispatch(ctx context.Context, intents ...notification.Intent) {
	msgs := Render(intents...)
	if len(msgs) == 0 {
		return
	}
	// delivery outlives the request that produced it
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(base, d.opts.Timeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(d.opts.Concurrency)
		for _, m := range msgs {
			g.Go(func() error {
				d.deliver(ctx, m)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, m Message) {
	kind := string(m.Intent.Kind)
	err := d.sender.Send(ctx, m)
	switch {
	case err == nil:
		metrics.Notifications.WithLabelValues(kind, "sent").Inc()
	case errors.Is(err, ErrNoAddress):
		metrics.Notifications.WithLabelValues(kind, "skipped").Inc()
		d.log.Debug("notification skipped: no address", map[string]interface{}{
			"intent_id": m.Intent.ID, "party": string(m.To.Kind) + ":" + m.To.ID,
		})
	default:
		metrics.Notifications.WithLabelValues(kind, "failed").Inc()
		d.log.WithError(err).Warn("notification failed", map[string]interface{}{
			"intent_id": m.Intent.ID,
			"kind":      kind,
			"loan_id":   m.Intent.LoanID,
			"party":     string(m.To.Kind) + ":" + m.To.ID,
		})
	}
}

// Wait blocks until every dispatched batch has finished. Used on shutdown.
func (d *Dispatcher) Wait() { d.wg.Wait() }
