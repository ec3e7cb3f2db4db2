// Package poller drives one server-side download job to completion by
// requesting its status on a fixed cadence.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/errors"
)

// DefaultInterval is the status poll cadence.
const DefaultInterval = time.Second

// StatusClient is the slice of the API client the poller needs.
type StatusClient interface {
	Status(ctx context.Context, downloadID string) (*api.StatusResponse, error)
}

// Update carries incremental job progress. Fields absent from a status
// response are left zero here; consumers keep their previously displayed
// values rather than regressing to blank.
type Update struct {
	JobID       string
	Progress    float64
	HasProgress bool
	Speed       string
}

// Result is the single terminal outcome of a polled job.
type Result struct {
	JobID    string
	Success  bool
	Title    string
	Duration int
	Err      error
}

// Poller polls the status of one download job. Each instance is tagged with
// its job id so the owner can discard callbacks from superseded jobs. A
// poller never issues a new status request before the previous one resolves,
// so updates are delivered in send order.
type Poller struct {
	client   StatusClient
	jobID    string
	interval time.Duration

	mu        sync.Mutex
	cancelled bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a poller for the given job.
func New(client StatusClient, jobID string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		jobID:    jobID,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// JobID returns the id of the job this poller is bound to.
func (p *Poller) JobID() string {
	return p.jobID
}

// Start begins polling in a background goroutine. onUpdate fires for every
// response carrying progress or speed; onTerminal fires exactly once, on
// completion, failure, or a transport error. Cancel suppresses both.
func (p *Poller) Start(ctx context.Context, onUpdate func(Update), onTerminal func(Result)) {
	pollCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		cancel()
		close(p.done)
		return
	}
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(pollCtx, onUpdate, onTerminal)
}

func (p *Poller) run(ctx context.Context, onUpdate func(Update), onTerminal func(Result)) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The status request runs inline, so a slow response simply
			// delays the next tick; requests never pile up.
			resp, err := p.client.Status(ctx, p.jobID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// A transport failure is terminal: the poller does not
				// distinguish transient network errors from job errors.
				p.finish(onTerminal, Result{JobID: p.jobID, Err: err})
				return
			}

			if resp.Progress != "" || resp.Speed != "" {
				u := Update{JobID: p.jobID, Speed: resp.Speed}
				u.Progress, u.HasProgress = resp.ProgressPercent()
				p.deliver(func() { onUpdate(u) })
			}

			switch resp.Status {
			case api.JobQueued, api.JobPending, api.JobDownloading:
				continue
			case api.JobCompleted:
				p.finish(onTerminal, Result{
					JobID:    p.jobID,
					Success:  true,
					Title:    resp.Title,
					Duration: resp.Duration,
				})
				return
			}

			if !resp.Status.Terminal() {
				// A status outside the known vocabulary; keep polling
				// rather than failing the job over it.
				continue
			}

			msg := resp.Error
			if msg == "" {
				msg = string(resp.Status)
			}
			p.finish(onTerminal, Result{
				JobID: p.jobID,
				Err:   fmt.Errorf("%w: %w", errors.ErrJobFailed, &api.RemoteError{Message: msg}),
			})
			return
		}
	}
}

// finish delivers the terminal result unless the poller was cancelled.
func (p *Poller) finish(onTerminal func(Result), r Result) {
	p.deliver(func() { onTerminal(r) })
}

// deliver invokes fn unless Cancel has been called.
func (p *Poller) deliver(fn func()) {
	p.mu.Lock()
	cancelled := p.cancelled
	p.mu.Unlock()
	if !cancelled {
		fn()
	}
}

// Cancel stops polling immediately and suppresses any further callbacks.
// It is safe to call repeatedly and before Start.
func (p *Poller) Cancel() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Done returns a channel closed once the polling goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
