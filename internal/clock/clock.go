package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is the wall clock, optionally pinned to a location.
type Real struct {
	Location *time.Location
}

func NewReal(loc *time.Location) Real {
	return Real{Location: loc}
}

func (r Real) Now() time.Time {
	if r.Location == nil {
		return time.Now()
	}
	return time.Now().In(r.Location)
}

func (r Real) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (rt realTicker) C() <-chan time.Time { return rt.t.C }
func (rt realTicker) Stop()               { rt.t.Stop() }

// Manual only moves when told to. Tickers fire on Advance/Set, at most once
// per call (like time.Ticker, a slow reader drops ticks).
type Manual struct {
	mutex   sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &manualTicker{
		clock:    m,
		c:        make(chan time.Time, 1),
		interval: d,
		next:     m.now.Add(d),
	}
	m.tickers = append(m.tickers, t)
	return t
}

func (m *Manual) Advance(d time.Duration) {
	m.Set(m.Now().Add(d))
}

func (m *Manual) Set(t time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.now = t
	for _, tk := range m.tickers {
		if tk.next.After(t) {
			continue
		}
		for !tk.next.After(t) {
			tk.next = tk.next.Add(tk.interval)
		}
		select {
		case tk.c <- t:
		default:
		}
	}
}

// Tickers returns the number of running tickers.
func (m *Manual) Tickers() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.tickers)
}

func (m *Manual) remove(t *manualTicker) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i, tk := range m.tickers {
		if tk == t {
			m.tickers = append(m.tickers[:i], m.tickers[i+1:]...)
			return
		}
	}
}

type manualTicker struct {
	clock    *Manual
	c        chan time.Time
	interval time.Duration
	next     time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               { t.clock.remove(t) }
