// Package scheduler abstracts timer wiring so monitors can be driven by
// real timers in production and stepped deterministically in tests.
package scheduler

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled job. Safe to call more than once.
type CancelFunc func()

// Scheduler registers repeated and one-shot jobs.
type Scheduler interface {
	// Every runs fn on each interval tick until cancelled.
	Every(interval time.Duration, fn func()) CancelFunc
	// After runs fn once after the delay unless cancelled first.
	After(delay time.Duration, fn func()) CancelFunc
}

// Timers is the production Scheduler backed by time.Ticker and
// time.AfterFunc.
type Timers struct{}

// NewTimers creates the real-time scheduler.
func NewTimers() *Timers { return &Timers{} }

func (t *Timers) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (t *Timers) After(delay time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}

// Manual is a Scheduler stepped explicitly from tests. Registered jobs
// only run when Tick or Fire is called.
type Manual struct {
	mu     sync.Mutex
	nextID int
	every  map[int]func()
	after  map[int]func()
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{
		every: make(map[int]func()),
		after: make(map[int]func()),
	}
}

func (m *Manual) Every(_ time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.every[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.every, id)
	}
}

func (m *Manual) After(_ time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.after[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.after, id)
	}
}

// Tick runs every registered interval job once.
func (m *Manual) Tick() {
	m.mu.Lock()
	jobs := make([]func(), 0, len(m.every))
	for _, fn := range m.every {
		jobs = append(jobs, fn)
	}
	m.mu.Unlock()

	for _, fn := range jobs {
		fn()
	}
}

// Fire runs and clears all pending one-shot jobs.
func (m *Manual) Fire() {
	m.mu.Lock()
	jobs := make([]func(), 0, len(m.after))
	for _, fn := range m.after {
		jobs = append(jobs, fn)
	}
	m.after = make(map[int]func())
	m.mu.Unlock()

	for _, fn := range jobs {
		fn()
	}
}

// PendingAfter reports how many one-shot jobs are waiting.
func (m *Manual) PendingAfter() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.after)
}
