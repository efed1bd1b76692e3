package health

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncecere/gemini_relay/internal/config"
)

// CheckFunc probes the upstream provider.
type CheckFunc func(ctx context.Context) error

// Status is the result of the most recent provider probe.
type Status struct {
	Checked   bool      `json:"checked"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Latency   string    `json:"latency,omitempty"`
}

// Monitor periodically pings the active provider and keeps the last result.
type Monitor struct {
	provider  string
	check     CheckFunc
	interval  time.Duration
	timeout   time.Duration
	status    atomic.Pointer[Status]
	startOnce sync.Once
	now       func() time.Time
}

// NewMonitor constructs a monitor using the health configuration.
func NewMonitor(provider string, check CheckFunc, cfg config.HealthConfig) *Monitor {
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > interval {
		timeout = 10 * time.Second
	}
	m := &Monitor{
		provider: provider,
		check:    check,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}
	m.status.Store(&Status{})
	return m
}

// Start begins the monitoring loop until ctx is canceled. Providers without a
// health check are never probed.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil || m.check == nil {
		return
	}
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

// Status returns a copy of the last probe result.
func (m *Monitor) Status() Status {
	if m == nil {
		return Status{}
	}
	return *m.status.Load()
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckNow(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs one probe and records its outcome.
func (m *Monitor) CheckNow(ctx context.Context) Status {
	if m.check == nil {
		return m.Status()
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := m.now()
	err := m.check(timeoutCtx)
	status := &Status{
		Checked:   true,
		Healthy:   err == nil,
		CheckedAt: start.UTC(),
		Latency:   m.now().Sub(start).String(),
	}
	if err != nil {
		status.Error = err.Error()
		slog.Warn("provider health check failed", "provider", m.provider, "error", err)
	}
	m.status.Store(status)
	return *status
}
