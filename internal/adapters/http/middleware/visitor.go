package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"activityboard/internal/application/board"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const visitContextKey contextKey = "visit"

const visitorCookieName = "board_visitor"

// VisitTTL is how long an idle visit is kept.
const VisitTTL = 24 * time.Hour

// Draft is the sign-up form content kept across a redirect.
type Draft struct {
	Activity string
	Email    string
}

// Visit is the per-browser state of an anonymous visitor: its message area and form draft.
type Visit struct {
	Banners *board.Notifier

	mu       sync.Mutex
	draft    Draft
	lastSeen time.Time
}

// Draft returns the saved form content.
func (v *Visit) Draft() Draft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// SetDraft saves the form content so a failed sign-up can be corrected.
func (v *Visit) SetDraft(d Draft) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = d
}

// ClearDraft resets the form.
func (v *Visit) ClearDraft() {
	v.SetDraft(Draft{})
}

func (v *Visit) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visit) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen)
}

// VisitorStore is an in-memory store of visits keyed by cookie token.
type VisitorStore struct {
	mu          sync.RWMutex
	visits      map[string]*Visit
	newNotifier func() *board.Notifier
	now         func() time.Time
}

// NewVisitorStore creates a store whose visits get notifiers from newNotifier.
// PRE: newNotifier is non-nil
func NewVisitorStore(newNotifier func() *board.Notifier) *VisitorStore {
	return &VisitorStore{
		visits:      make(map[string]*Visit),
		newNotifier: newNotifier,
		now:         time.Now,
	}
}

// Create starts a new visit and returns its token.
// POST: the visit is stored under the returned token
func (s *VisitorStore) Create() (string, *Visit, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}
	v := &Visit{Banners: s.newNotifier(), lastSeen: s.now()}
	s.mu.Lock()
	s.visits[token] = v
	s.mu.Unlock()
	return token, v, nil
}

// Get retrieves a visit by token.
// POST: returns the visit if known and not idle longer than VisitTTL
func (s *VisitorStore) Get(token string) (*Visit, bool) {
	s.mu.RLock()
	v, ok := s.visits[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if v.idleSince(now) > VisitTTL {
		s.mu.Lock()
		delete(s.visits, token)
		s.mu.Unlock()
		return nil, false
	}
	v.touch(now)
	return v, true
}

// Sweep drops visits idle longer than VisitTTL and returns how many were removed.
func (s *VisitorStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, v := range s.visits {
		if v.idleSince(now) > VisitTTL {
			delete(s.visits, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored visits.
func (s *VisitorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}

// Visitor returns middleware that attaches the visitor's state to the request context,
// starting a new visit and setting its cookie when none is known.
// Static assets and metric scrapes pass through without a visit.
func Visitor(store *VisitorStore, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAssetOrScrape(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			var visit *Visit
			if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
				visit, _ = store.Get(cookie.Value)
			}
			if visit == nil {
				token, v, err := store.Create()
				if err != nil {
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				visit = v
				setVisitorCookie(w, token, secure)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithVisit(r.Context(), visit)))
		})
	}
}

// VisitFromContext extracts the visit from the request context.
func VisitFromContext(ctx context.Context) (*Visit, bool) {
	v, ok := ctx.Value(visitContextKey).(*Visit)
	return v, ok
}

// ContextWithVisit returns a context carrying the visit.
func ContextWithVisit(ctx context.Context, v *Visit) context.Context {
	return context.WithValue(ctx, visitContextKey, v)
}

func setVisitorCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(VisitTTL / time.Second),
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
