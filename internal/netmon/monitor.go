// Package netmon detects loss and restoration of network connectivity and
// drives the persistent offline notification. The monitor itself is
// edge-triggered: something else (normally the Prober in this package)
// observes the network and reports transitions.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wlp-app/wlp/internal/metrics"
)

// Surface is the notification side the monitor drives. Implemented by
// notify.Center.
type Surface interface {
	OpenOffline()
	CloseOffline()
}

// ProbeFunc is a lightweight best-effort connectivity check offered as the
// retry affordance on the offline surface. Its result never flips the
// monitor's state; only connectivity transitions do.
type ProbeFunc func(ctx context.Context) error

// Config holds monitor timing. Zero values pick the defaults.
type Config struct {
	// ReassertInterval is how often the offline notification is re-opened
	// while offline, guarding against anything closing it prematurely.
	ReassertInterval time.Duration
	// Debounce collapses closely spaced offline signals into one visible
	// open.
	Debounce time.Duration
}

const (
	defaultReassertInterval = 8 * time.Second
	defaultDebounce         = 1500 * time.Millisecond
)

// Monitor is a two-state (online/offline) machine. Entering offline opens
// the offline notification and arms a re-assertion ticker; returning online
// cancels the ticker and closes the notification.
type Monitor struct {
	surface Surface
	probe   ProbeFunc
	cfg     Config
	log     *slog.Logger

	mu          sync.Mutex
	started     bool
	online      bool
	lastShownAt time.Time
	stopLoop    chan struct{}
}

// NewMonitor creates a monitor. probe may be nil.
func NewMonitor(surface Surface, probe ProbeFunc, cfg Config, log *slog.Logger) *Monitor {
	if cfg.ReassertInterval <= 0 {
		cfg.ReassertInterval = defaultReassertInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		surface: surface,
		probe:   probe,
		cfg:     cfg,
		log:     log,
		online:  true,
	}
}

// Start seeds the monitor with the initial connectivity state. It runs at
// most once per process; repeated calls are no-ops.
func (m *Monitor) Start(initiallyOnline bool) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.online = initiallyOnline
	m.mu.Unlock()

	if initiallyOnline {
		metrics.ConnectivityOnline.Set(1)
		return
	}
	// Already offline at startup: surface it immediately.
	m.HandleOffline()
}

// Stop cancels the re-assertion loop. Idempotent; safe on every exit path.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopLoopLocked()
	m.mu.Unlock()
}

// Online reports the current connectivity snapshot.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// HandleOffline records the online -> offline transition: it opens the
// offline notification (debounced) and arms the re-assertion ticker.
func (m *Monitor) HandleOffline() {
	m.mu.Lock()
	m.online = false
	alreadyLooping := m.stopLoop != nil
	if !alreadyLooping {
		stop := make(chan struct{})
		m.stopLoop = stop
		go m.reassertLoop(stop)
	}
	m.mu.Unlock()

	metrics.ConnectivityOnline.Set(0)
	if !alreadyLooping {
		m.log.Warn("connectivity lost")
	}
	m.showOffline()
}

// HandleOnline records the offline -> online transition: it cancels the
// re-assertion ticker, closes the offline notification, and resets the
// debounce stamp so the next offline episode shows immediately.
func (m *Monitor) HandleOnline() {
	m.mu.Lock()
	wasOffline := !m.online
	m.online = true
	m.lastShownAt = time.Time{}
	m.stopLoopLocked()
	m.mu.Unlock()

	metrics.ConnectivityOnline.Set(1)
	if wasOffline {
		m.log.Info("connectivity restored")
	}
	m.surface.CloseOffline()
}

// Probe runs the best-effort connectivity check, swallowing its error. A
// successful probe does not close the notification; that is reserved for a
// real online transition.
func (m *Monitor) Probe(ctx context.Context) {
	if m.probe == nil {
		return
	}
	if err := m.probe(ctx); err != nil {
		m.log.Debug("connectivity probe failed", "error", err)
	}
}

func (m *Monitor) reassertLoop(stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.ReassertInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.showOffline()
		}
	}
}

// showOffline opens the offline surface unless it was shown within the
// debounce window.
func (m *Monitor) showOffline() {
	now := time.Now()
	m.mu.Lock()
	if now.Sub(m.lastShownAt) < m.cfg.Debounce {
		m.mu.Unlock()
		return
	}
	m.lastShownAt = now
	m.mu.Unlock()

	m.surface.OpenOffline()
}

func (m *Monitor) stopLoopLocked() {
	if m.stopLoop != nil {
		close(m.stopLoop)
		m.stopLoop = nil
	}
}
