package machine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"

	"github.com/vendo-machines/vendo/internal/domain"
)

// PaymentPoller probes a remote payment's status at a fixed interval until
// it observes a terminal status or is stopped. It self-stops on the first
// terminal status; at most one poller runs per controller, and a new QR
// attempt must stop any prior poller first.
//
// Transient probe errors do not kill the poller: the next probe is delayed
// with exponential backoff, reset to the fixed interval on the first
// successful probe.
type PaymentPoller struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// StartPaymentPoller begins polling the payment behind handle. Exactly one
// of onPaid / onFailed is invoked, unless Stop wins first.
func StartPaymentPoller(
	clk clock.Clock,
	interval time.Duration,
	log *slog.Logger,
	svc PaymentService,
	handle string,
	onPaid func(),
	onFailed func(),
) *PaymentPoller {
	p := &PaymentPoller{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = interval
	bo.MaxInterval = 10 * interval
	bo.MaxElapsedTime = 0 // never give up on elapsed time alone

	go func() {
		defer close(p.done)
		wait := interval
		for {
			t := clk.Timer(wait)
			select {
			case <-p.stopCh:
				t.Stop()
				return
			case <-t.C:
			}

			status, err := svc.Status(context.Background(), handle)
			if err != nil {
				wait = bo.NextBackOff()
				log.Warn("payment status probe failed",
					"payment", handle, "retry_in", wait, "error", err)
				continue
			}
			bo.Reset()
			wait = interval

			switch status {
			case domain.PaymentPaid:
				onPaid()
				return
			case domain.PaymentFailed, domain.PaymentCanceled:
				log.Info("payment reached terminal status",
					"payment", handle, "status", status)
				onFailed()
				return
			default:
				// still pending, keep probing
			}
		}
	}()

	return p
}

// Stop halts polling. Safe to call more than once and after self-stop.
func (p *PaymentPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Done is closed when the polling goroutine has exited.
func (p *PaymentPoller) Done() <-chan struct{} { return p.done }
