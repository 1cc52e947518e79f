package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/domain"
)

// Prober checks backend liveness.
type Prober interface {
	Health(ctx context.Context) error
}

// Monitor polls backend liveness: once immediately on Start, then on a
// fixed interval. Every probe result overwrites the state in lockstep, no
// debouncing. Stop tears the polling goroutine down without leaking its
// ticker.
type Monitor struct {
	probe    Prober
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	state    domain.ConnectionState
	onChange func(domain.ConnectionState)

	stop chan struct{}
	done chan struct{}
}

// NewMonitor creates a connection monitor. A non-positive interval falls
// back to 30 seconds.
func NewMonitor(probe Prober, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		timeout:  5 * time.Second,
		log:      logger,
		state:    domain.ConnectionUnknown,
	}
}

// SetOnChange registers a callback fired whenever the observed state
// differs from the previous one. Runs outside the monitor's lock.
func (m *Monitor) SetOnChange(fn func(domain.ConnectionState)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// State returns the last observed connection state.
func (m *Monitor) State() domain.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the polling loop. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.check()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.check()
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	state := domain.ConnectionConnected
	if err := m.probe.Health(ctx); err != nil {
		state = domain.ConnectionDisconnected
		if m.log != nil {
			m.log.Debug("health probe failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	changed := m.state != state
	m.state = state
	fn := m.onChange
	m.mu.Unlock()

	if changed && fn != nil {
		fn(state)
	}
}
