package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"creatorpulse/utils"
)

var ErrAlreadyRunning = errors.New("poller already running")

// TickFunc is run on every poll. Errors are logged and polling continues.
type TickFunc func(ctx context.Context) error

// InboxPoller refreshes one inbox on a fixed interval between Start and Stop.
// Stop returns only once the polling goroutine has exited.
type InboxPoller struct {
	interval time.Duration
	tick     TickFunc
	name     string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewInboxPoller(name string, interval time.Duration, tick TickFunc) *InboxPoller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &InboxPoller{
		interval: interval,
		tick:     tick,
		name:     name,
	}
}

func (p *InboxPoller) Interval() time.Duration {
	return p.interval
}

func (p *InboxPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Start begins polling. The first tick fires after one interval. Cancelling
// ctx stops the poller as Stop would.
func (p *InboxPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	return nil
}

func (p *InboxPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := utils.Logger("inbox_poller").WithField("poller", p.name)
	log.WithField("interval", p.interval).Debug("Inbox poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Inbox poller stopped")
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Inbox refresh failed")
			}
		}
	}
}

// Stop cancels polling and waits for the goroutine. Safe to call repeatedly.
func (p *InboxPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
