package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/lifedash/internal/clock"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTick        = time.Minute
	DefaultPassTimeout = 10 * time.Second
)

type passRunner interface {
	RunPass(ctx context.Context, now time.Time) (*PassResult, error)
}

// Scheduler runs one evaluation pass right away and then one per tick.
// Passes run on a single goroutine, so they never overlap; a tick that
// arrives while a pass is still running is dropped.
type Scheduler struct {
	engine      passRunner
	clock       clock.Clock
	tick        time.Duration
	passTimeout time.Duration

	mutex      sync.Mutex
	lastResult *PassResult
	passes     int

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(engine passRunner, clk clock.Clock, tick, passTimeout time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	if passTimeout <= 0 {
		passTimeout = DefaultPassTimeout
	}
	if clk == nil {
		clk = clock.NewReal(nil)
	}
	return &Scheduler{
		engine:      engine,
		clock:       clk,
		tick:        tick,
		passTimeout: passTimeout,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	if s.done != nil {
		s.mutex.Unlock()
		log.Warnln("reminder scheduler already started")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mutex.Unlock()

	ticker := s.clock.NewTicker(s.tick)
	log.Debugf("reminder scheduler started, tick: %s", s.tick)

	go func() {
		defer close(done)
		defer ticker.Stop()

		s.runPass(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Debugln("reminder scheduler stopped")
				return
			case <-ticker.C():
				s.runPass(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	cancel, done := s.cancel, s.done
	s.mutex.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) runPass(ctx context.Context) {
	// a pass is not interrupted by Stop, only bounded by its own timeout
	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.passTimeout)
	defer cancel()

	now := s.clock.Now()
	res, err := s.engine.RunPass(passCtx, now)
	if err != nil {
		log.Errorf("reminder pass at %s: %s", now.Format(time.RFC3339), err)
	}
	if res != nil {
		log.Tracef("reminder pass at %s: %d emitted, %d suppressed", now.Format(time.RFC3339), len(res.Emitted), res.Suppressed)
	}

	s.mutex.Lock()
	s.passes++
	if res != nil {
		s.lastResult = res
	}
	s.mutex.Unlock()
}

// LastResult returns the result of the most recent pass, or nil.
func (s *Scheduler) LastResult() *PassResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastResult
}

func (s *Scheduler) Passes() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.passes
}
