package board

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"activityboard/internal/domain/banner"
	"activityboard/internal/observability"
)

// Stopper cancels a scheduled call. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Stopper

func afterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Notifier is the message area: it holds at most one banner and dismisses it after a delay.
// INVARIANT: only the most recent banner's dismissal is pending; showing a banner cancels the previous timer
type Notifier struct {
	mu           sync.Mutex
	current      *banner.Banner
	pending      Stopper
	dismissAfter time.Duration
	schedule     Scheduler
	now          func() time.Time
}

// NotifierOption customises a Notifier.
type NotifierOption func(*Notifier)

// WithScheduler replaces time.AfterFunc, for tests.
func WithScheduler(s Scheduler) NotifierOption {
	return func(n *Notifier) { n.schedule = s }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) { n.now = now }
}

// NewNotifier creates a Notifier. A non-positive dismissAfter uses banner.DefaultDismissAfter.
func NewNotifier(dismissAfter time.Duration, opts ...NotifierOption) *Notifier {
	if dismissAfter <= 0 {
		dismissAfter = banner.DefaultDismissAfter
	}
	n := &Notifier{
		dismissAfter: dismissAfter,
		schedule:     afterFunc,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show replaces the current banner and schedules its dismissal.
// POST: the previous pending dismissal is stopped; the new banner is current
func (n *Notifier) Show(kind banner.Kind, text string) banner.Banner {
	now := n.now()
	b := banner.Banner{
		ID:        uuid.New().String(),
		Kind:      kind,
		Text:      text,
		ShownAt:   now,
		ExpiresAt: now.Add(n.dismissAfter),
	}

	n.mu.Lock()
	if n.pending != nil {
		n.pending.Stop()
	}
	n.current = &b
	id := b.ID
	n.pending = n.schedule(n.dismissAfter, func() { n.Dismiss(id) })
	n.mu.Unlock()

	observability.RecordBanner(string(kind))
	return b
}

// Success shows a success banner.
func (n *Notifier) Success(text string) banner.Banner {
	return n.Show(banner.KindSuccess, text)
}

// Error shows an error banner.
func (n *Notifier) Error(text string) banner.Banner {
	return n.Show(banner.KindError, text)
}

// Current returns the visible banner, if any.
func (n *Notifier) Current() (banner.Banner, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return banner.Banner{}, false
	}
	return *n.current, true
}

// Dismiss hides the banner with the given ID. A stale ID is ignored.
// POST: returns true if the current banner was hidden
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.current.ID != id {
		return false
	}
	n.current = nil
	n.pending = nil
	return true
}
