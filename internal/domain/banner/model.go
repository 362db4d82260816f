package banner

import "time"

// DefaultDismissAfter is how long a banner stays visible.
const DefaultDismissAfter = 5 * time.Second

// Kind is the visual state of the message area.
type Kind string

// Banner kinds; the values double as CSS classes.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Banner is one outcome message shown in the message area.
type Banner struct {
	ID        string
	Kind      Kind
	Text      string
	ShownAt   time.Time
	ExpiresAt time.Time
}

// IsError reports whether the banner describes a failure.
func (b Banner) IsError() bool {
	return b.Kind == KindError
}

// Remaining returns the time left before dismissal at now, never negative.
func (b Banner) Remaining(now time.Time) time.Duration {
	d := b.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
