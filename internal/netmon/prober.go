package netmon

import (
	"context"
	"net"
	"time"
)

// CheckFunc performs one connectivity check. A nil return means the network
// path is up.
type CheckFunc func(ctx context.Context) error

// DialCheck checks connectivity by opening a TCP connection to addr.
func DialCheck(addr string, timeout time.Duration) CheckFunc {
	return func(ctx context.Context) error {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// Prober turns periodic connectivity checks into the edge-triggered
// transitions the monitor consumes. It only reports changes, so the monitor
// sees "went offline" and "came back online" events, not every check.
type Prober struct {
	monitor  *Monitor
	check    CheckFunc
	interval time.Duration
}

// NewProber creates a prober feeding the given monitor.
func NewProber(monitor *Monitor, check CheckFunc, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Prober{monitor: monitor, check: check, interval: interval}
}

// CheckNow runs one connectivity check and reports the result.
func (p *Prober) CheckNow(ctx context.Context) bool {
	return p.check(ctx) == nil
}

// Run probes until ctx is cancelled, notifying the monitor on every edge.
func (p *Prober) Run(ctx context.Context) {
	last := p.monitor.Online()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online := p.CheckNow(ctx)
			if online == last {
				continue
			}
			last = online
			if online {
				p.monitor.HandleOnline()
			} else {
				p.monitor.HandleOffline()
			}
		}
	}
}
