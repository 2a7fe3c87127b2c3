package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wlp-app/wlp/internal/metrics"
)

// Options carries per-call overrides for ShowError. All fields are optional.
type Options struct {
	// Title replaces the kind-based default title.
	Title string
	// FallbackMessage replaces the classified error's own message as the
	// fallback body for UNKNOWN failures.
	FallbackMessage string
	// Retry is offered to the user on the standard surface. Running it does
	// not close the notification; dismissal is a separate action.
	Retry func(ctx context.Context) error
}

// Standard is the dismissible one-shot notification slot.
type Standard struct {
	Open     bool   `json:"open"`
	Kind     Kind   `json:"kind,omitempty"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message,omitempty"`
	CanRetry bool   `json:"can_retry"`
}

// State is the full notification state read by the rendering layer. The two
// slots are independent: offline is persistent and not user-dismissible,
// standard is one-shot.
type State struct {
	Standard    Standard `json:"standard"`
	OfflineOpen bool     `json:"offline_open"`
}

// Center is the process-wide notification channel. It owns the notification
// state, classifies every failure handed to it, and routes NETWORK failures
// to the offline slot instead of the standard one. It is created once during
// wiring and injected into every call site that can fail.
type Center struct {
	classifier *Classifier
	log        *slog.Logger

	mu    sync.Mutex
	state State
	retry func(ctx context.Context) error
	subs  map[chan State]struct{}
}

// NewCenter creates a notification center backed by the given classifier.
func NewCenter(classifier *Classifier, log *slog.Logger) *Center {
	if log == nil {
		log = slog.Default()
	}
	return &Center{
		classifier: classifier,
		log:        log,
		subs:       make(map[chan State]struct{}),
	}
}

// ShowError classifies err and surfaces it. NETWORK failures open the
// offline slot; everything else lands on the standard slot, last-call-wins:
// a call while a notification is open replaces its content, it never queues.
func (c *Center) ShowError(err error, opts *Options) {
	app := c.classifier.Classify(err)
	metrics.ErrorsClassified.WithLabelValues(string(app.Kind)).Inc()

	if app.Kind == KindNetwork {
		// Symptom of a persistent condition, not a discrete event. The
		// offline surface stays up until connectivity returns.
		c.log.Warn("network failure surfaced", "error", app.Message)
		c.OpenOffline()
		return
	}

	title := TitleFor(app.Kind)
	fallback := app.Message
	if opts != nil {
		if opts.Title != "" {
			title = opts.Title
		}
		if opts.FallbackMessage != "" {
			fallback = opts.FallbackMessage
		}
	}
	message := MessageFor(app.Kind, fallback)

	c.mu.Lock()
	c.state.Standard = Standard{
		Open:     true,
		Kind:     app.Kind,
		Title:    title,
		Message:  message,
		CanRetry: opts != nil && opts.Retry != nil,
	}
	if opts != nil {
		c.retry = opts.Retry
	} else {
		c.retry = nil
	}
	st := c.state
	c.mu.Unlock()

	metrics.NotificationsShown.WithLabelValues("standard").Inc()
	c.log.Info("notification shown", "kind", app.Kind, "title", title)
	c.publish(st)
}

// Dismiss closes the standard slot. The offline slot is untouched: it can
// only be closed by the offline monitor observing restored connectivity.
func (c *Center) Dismiss() {
	c.mu.Lock()
	c.state.Standard = Standard{}
	c.retry = nil
	st := c.state
	c.mu.Unlock()
	c.publish(st)
}

// Retry runs the caller-supplied retry callback, if any. The notification
// stays open; a failing retry re-enters classification, so a retry that
// fails because the device went offline flips over to the offline surface.
func (c *Center) Retry(ctx context.Context) {
	c.mu.Lock()
	retry := c.retry
	c.mu.Unlock()
	if retry == nil {
		return
	}
	if err := retry(ctx); err != nil {
		c.ShowError(err, nil)
	}
}

// OpenOffline opens the persistent offline slot.
func (c *Center) OpenOffline() {
	c.mu.Lock()
	changed := !c.state.OfflineOpen
	c.state.OfflineOpen = true
	st := c.state
	c.mu.Unlock()

	metrics.NotificationsShown.WithLabelValues("offline").Inc()
	if changed {
		c.publish(st)
	}
}

// CloseOffline closes the offline slot. Only the offline monitor calls this.
func (c *Center) CloseOffline() {
	c.mu.Lock()
	changed := c.state.OfflineOpen
	c.state.OfflineOpen = false
	st := c.state
	c.mu.Unlock()
	if changed {
		c.publish(st)
	}
}

// Snapshot returns a copy of the current notification state.
func (c *Center) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers an observer. The channel always holds the most recent
// state: a slow reader sees the latest value, not a backlog. The returned
// function cancels the subscription.
func (c *Center) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	st := c.state
	c.mu.Unlock()

	ch <- st
	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Center) publish(st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
