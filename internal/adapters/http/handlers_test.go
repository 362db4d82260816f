package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"activityboard/internal/adapters/activityapi"
	"activityboard/internal/adapters/http/middleware"
	"activityboard/internal/adapters/http/perf"
	"activityboard/internal/adapters/i18n"
	"activityboard/internal/application/board"
	"activityboard/internal/domain/activity"
)

// fakeUpstream is an in-memory activities API.
type fakeUpstream struct {
	mu         sync.Mutex
	activities map[string]*activity.Activity
	failFetch  bool
	calls      []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{activities: map[string]*activity.Activity{
		"Chess Club": {
			Description: "Learn strategies", Schedule: "Fridays, 3:30 PM", Category: "Games",
			MaxParticipants: 12, Participants: []string{"michael@school.edu"}, SortKey: "5-1530",
		},
		"Art": {
			Description: "Painting", Schedule: "Mondays, 3:00 PM", Category: "Arts",
			MaxParticipants: 10, Participants: []string{}, SortKey: "1-1500",
		},
	}}
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /activities", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failFetch {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(f.activities)
	})
	mux.HandleFunc("POST /activities/{name}/signup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name, email := r.PathValue("name"), r.URL.Query().Get("email")
		f.calls = append(f.calls, "signup:"+name+":"+email)
		a, ok := f.activities[name]
		if !ok {
			writeTestJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
			return
		}
		if a.HasParticipant(email) {
			writeTestJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is already signed up"})
			return
		}
		a.Participants = append(a.Participants, email)
		writeTestJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Signed up %s for %s", email, name)})
	})
	mux.HandleFunc("DELETE /activities/{name}/unregister", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name, email := r.PathValue("name"), r.URL.Query().Get("email")
		f.calls = append(f.calls, "unregister:"+name+":"+email)
		a, ok := f.activities[name]
		if !ok || !a.HasParticipant(email) {
			writeTestJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is not signed up for this activity"})
			return
		}
		kept := a.Participants[:0]
		for _, p := range a.Participants {
			if p != email {
				kept = append(kept, p)
			}
		}
		a.Participants = kept
		writeTestJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Unregistered %s from %s", email, name)})
	})
	return mux
}

func (f *fakeUpstream) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type testBoard struct {
	upstream   *fakeUpstream
	controller *board.Controller
	handler    http.Handler
	collector  *perf.Collector
}

func newTestBoard(t *testing.T) *testBoard {
	t.Helper()
	up := newFakeUpstream()
	srv := httptest.NewServer(up.handler())
	t.Cleanup(srv.Close)

	collector := perf.NewCollector(100)
	client := activityapi.NewClient(srv.URL, &http.Client{
		Timeout:   5 * time.Second,
		Transport: activityapi.NewTimedTransport(http.DefaultTransport, collector, 0),
	})
	controller := board.NewController(client, activity.NewCollator("en"))
	if err := controller.Reload(t.Context()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}

	visitors := middleware.NewVisitorStore(func() *board.Notifier { return board.NewNotifier(5 * time.Second) })
	deps := Deps{
		Board:      controller,
		API:        client,
		Translator: i18n.NewTranslator("en"),
		Visitors:   visitors,
		Collector:  collector,
	}
	return &testBoard{
		upstream:   up,
		controller: controller,
		handler:    middleware.Visitor(visitors, false)(Routes(deps, "en")),
		collector:  collector,
	}
}

// do serves one request, carrying the visitor cookie when given.
func (b *testBoard) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	b.handler.ServeHTTP(rr, req)
	return rr
}

// visit starts a visit and returns its cookie.
func (b *testBoard) visit(t *testing.T) *http.Cookie {
	t.Helper()
	rr := b.do(httptest.NewRequest("GET", "/", nil), nil)
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a visitor cookie")
	}
	return cookies[0]
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// TestHandleBoard_RendersControls verifies the page carries every control and the cards in order.
func TestHandleBoard_RendersControls(t *testing.T) {
	b := newTestBoard(t)
	rr := b.do(httptest.NewRequest("GET", "/", nil), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, id := range []string{"search-input", "category-filter", "sort-select", "activities-list", "signup-form", `id="email"`, `id="activity"`, `id="message"`} {
		if !strings.Contains(body, id) {
			t.Errorf("page is missing %s", id)
		}
	}
	if strings.Index(body, "<h4>Art</h4>") > strings.Index(body, "<h4>Chess Club</h4>") {
		t.Error("expected Art before Chess Club under name-asc")
	}
	if !strings.Contains(body, "10 spots left") || !strings.Contains(body, "11 spots left") {
		t.Error("expected spots-left text for both cards")
	}
	if !strings.Contains(body, "No participants yet") {
		t.Error("expected the empty participants note for Art")
	}
}

// TestHandleBoard_SearchLimitsSelect verifies the sign-up select only lists visible activities.
func TestHandleBoard_SearchLimitsSelect(t *testing.T) {
	b := newTestBoard(t)
	rr := b.do(httptest.NewRequest("GET", "/?q=chess", nil), nil)
	body := rr.Body.String()

	if !strings.Contains(body, `<option value="Chess Club">Chess Club</option>`) {
		t.Error("expected Chess Club in the select")
	}
	if strings.Contains(body, `<option value="Art">`) || strings.Contains(body, "<h4>Art</h4>") {
		t.Error("Art must be hidden by the search")
	}
}

// TestHandleBoard_SearchKeepsFocus verifies a reloaded search view refocuses the search box.
func TestHandleBoard_SearchKeepsFocus(t *testing.T) {
	b := newTestBoard(t)

	body := b.do(httptest.NewRequest("GET", "/?q=chess", nil), nil).Body.String()
	if !strings.Contains(body, `value="chess"`) || !strings.Contains(body, " autofocus>") {
		t.Error("expected the search input to keep its value and autofocus")
	}

	body = b.do(httptest.NewRequest("GET", "/", nil), nil).Body.String()
	if strings.Contains(body, "autofocus") {
		t.Error("the unfiltered board must not steal focus")
	}
}

// TestHandleBoard_NoMatches verifies the explicit empty state.
func TestHandleBoard_NoMatches(t *testing.T) {
	b := newTestBoard(t)
	rr := b.do(httptest.NewRequest("GET", "/?q=underwater", nil), nil)
	if !strings.Contains(rr.Body.String(), "No activities match your filters.") {
		t.Error("expected the no-matches message")
	}
}

// TestHandleBoard_LoadFailed verifies a failed reload replaces the list.
func TestHandleBoard_LoadFailed(t *testing.T) {
	b := newTestBoard(t)
	b.upstream.mu.Lock()
	b.upstream.failFetch = true
	b.upstream.mu.Unlock()
	if err := b.controller.Reload(t.Context()); err == nil {
		t.Fatal("expected the reload to fail")
	}
	rr := b.do(httptest.NewRequest("GET", "/", nil), nil)
	if !strings.Contains(rr.Body.String(), "Failed to load activities. Please try again later.") {
		t.Error("expected the load failure message")
	}
}

// TestHandleSignUp_Success verifies the redirect, the success banner and the refreshed card.
func TestHandleSignUp_Success(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)

	form := url.Values{"activity": {"Chess Club"}, "email": {"new@school.edu"}, "sort": {"time-asc"}}
	rr := b.do(postForm("/signup", form), cookie)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/?sort=time-asc" {
		t.Errorf("Location = %q, want /?sort=time-asc", loc)
	}
	if calls := b.upstream.recordedCalls(); len(calls) != 1 || calls[0] != "signup:Chess Club:new@school.edu" {
		t.Errorf("upstream calls = %v", calls)
	}

	page := b.do(httptest.NewRequest("GET", "/?sort=time-asc", nil), cookie).Body.String()
	if !strings.Contains(page, `class="success"`) || !strings.Contains(page, "Signed up new@school.edu for Chess Club") {
		t.Error("expected the success banner")
	}
	if !strings.Contains(page, `data-dismiss-ms="`) {
		t.Error("expected the dismissal delay on the banner")
	}
	if !strings.Contains(page, "new@school.edu</span>") {
		t.Error("expected the reloaded participant list")
	}
	if strings.Contains(page, `value="new@school.edu" placeholder`) {
		t.Error("expected the form to be cleared")
	}
}

// TestHandleSignUp_RejectedKeepsDraft verifies the server detail is shown and the form keeps its input.
func TestHandleSignUp_RejectedKeepsDraft(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)

	form := url.Values{"activity": {"Chess Club"}, "email": {"michael@school.edu"}}
	b.do(postForm("/signup", form), cookie)

	page := b.do(httptest.NewRequest("GET", "/", nil), cookie).Body.String()
	if !strings.Contains(page, `class="error"`) || !strings.Contains(page, "Student is already signed up") {
		t.Error("expected the rejection detail in an error banner")
	}
	if !strings.Contains(page, `value="michael@school.edu"`) {
		t.Error("expected the email to be kept")
	}
	if !strings.Contains(page, `<option value="Chess Club" selected>`) {
		t.Error("expected the activity to stay selected")
	}
}

// TestHandleSignUp_HiddenActivity verifies an activity outside the filtered list is refused.
func TestHandleSignUp_HiddenActivity(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)

	form := url.Values{"activity": {"Art"}, "email": {"a@school.edu"}, "q": {"chess"}}
	rr := b.do(postForm("/signup", form), cookie)

	if loc := rr.Header().Get("Location"); loc != "/?q=chess" {
		t.Errorf("Location = %q", loc)
	}
	if calls := b.upstream.recordedCalls(); len(calls) != 0 {
		t.Errorf("expected no upstream call, got %v", calls)
	}
}

// TestHandleRemoveParticipant verifies the delegated removal handler.
func TestHandleRemoveParticipant(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)

	key := activity.ParticipantKey{Activity: "Chess Club", Email: "michael@school.edu"}.Encode()
	rr := b.do(postForm("/participants/remove", url.Values{"participant": {key}, "category": {"Games"}}), cookie)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/?category=Games" {
		t.Errorf("status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if calls := b.upstream.recordedCalls(); len(calls) != 1 || calls[0] != "unregister:Chess Club:michael@school.edu" {
		t.Errorf("upstream calls = %v", calls)
	}
	page := b.do(httptest.NewRequest("GET", "/?category=Games", nil), cookie).Body.String()
	if !strings.Contains(page, "Unregistered michael@school.edu from Chess Club") {
		t.Error("expected the success banner")
	}
	if strings.Contains(page, "michael@school.edu</span>") {
		t.Error("expected the participant to be gone after reload")
	}
}

// TestHandleRemoveParticipant_InvalidKey verifies malformed keys are rejected.
func TestHandleRemoveParticipant_InvalidKey(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)
	rr := b.do(postForm("/participants/remove", url.Values{"participant": {"not-a-key"}}), cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// TestHandleBoardAPI verifies the JSON view.
func TestHandleBoardAPI(t *testing.T) {
	b := newTestBoard(t)
	rr := b.do(httptest.NewRequest("GET", "/api/board?sort=time-desc", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Board struct {
			ActivityOptions []string `json:"activity_options"`
			LoadFailed      bool     `json:"load_failed"`
			Cards           []struct {
				Name      string `json:"name"`
				SpotsLeft int    `json:"spots_left"`
			} `json:"cards"`
		} `json:"board"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Board.ActivityOptions) != 2 || resp.Board.ActivityOptions[0] != "Chess Club" {
		t.Errorf("ActivityOptions = %v, want Chess Club first under time-desc", resp.Board.ActivityOptions)
	}
	if resp.Board.LoadFailed {
		t.Error("unexpected load failure")
	}
}

// TestHandleRefresh verifies the manual reload.
func TestHandleRefresh(t *testing.T) {
	b := newTestBoard(t)
	cookie := b.visit(t)
	rr := b.do(postForm("/refresh", url.Values{}), cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	page := b.do(httptest.NewRequest("GET", "/", nil), cookie).Body.String()
	if !strings.Contains(page, "Activities refreshed.") {
		t.Error("expected the refresh banner")
	}
}

// TestHandlePerf verifies upstream calls show up in the perf summary.
func TestHandlePerf(t *testing.T) {
	b := newTestBoard(t)
	rr := b.do(httptest.NewRequest("GET", "/debug/perf", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var snap perf.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.SlowestUpstream) == 0 || snap.SlowestUpstream[0].Path != "GET /activities" {
		t.Errorf("SlowestUpstream = %+v", snap.SlowestUpstream)
	}
}

// TestStaticAndMetrics verifies the embedded assets and the Prometheus endpoint are served.
func TestStaticAndMetrics(t *testing.T) {
	b := newTestBoard(t)
	for _, path := range []string{"/static/board.css", "/static/board.js", "/metrics"} {
		rr := b.do(httptest.NewRequest("GET", path, nil), nil)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rr.Code)
		}
	}
}

// TestNewMux_RequiresCSRFToken verifies form posts through the full chain need a token.
func TestNewMux_RequiresCSRFToken(t *testing.T) {
	b := newTestBoard(t)
	mux := NewMux(Deps{
		Board:      b.controller,
		API:        activityapi.NewClient("http://127.0.0.1:1", nil),
		Translator: i18n.NewTranslator("en"),
		Visitors:   middleware.NewVisitorStore(func() *board.Notifier { return board.NewNotifier(0) }),
	}, Options{CSRFKey: make([]byte, 32), TrustedOrigins: []string{"localhost:8080"}})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, postForm("/signup", url.Values{"activity": {"Art"}, "email": {"a@x"}}))
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected security headers")
	}
	if !strings.Contains(rr.Body.String(), `name="gorilla.csrf.Token"`) {
		t.Error("expected the CSRF field in forms")
	}
}
