package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"

	"activityboard/internal/adapters/http/middleware"
	"activityboard/internal/application/listutil"
	"activityboard/internal/application/orchestrators"
	"activityboard/internal/application/projections"
	"activityboard/internal/domain/activity"
)

var errNoVisit = errors.New("no visit in request context")

// baseFuncs are replaced per request; they exist so the templates parse once at startup.
var baseFuncs = template.FuncMap{
	"t":         func(key string) string { return key },
	"csrfField": func() template.HTML { return "" },
}

// bannerView is the message area as rendered.
type bannerView struct {
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	DismissMs int64  `json:"dismiss_ms"` // time left before the banner is hidden
}

// hiddenField carries filter state through the action forms.
type hiddenField struct {
	Name  string
	Value string
}

type boardPage struct {
	Board        projections.GetBoardResult
	Banner       *bannerView
	Draft        middleware.Draft
	FilterFields []hiddenField
}

type boardResponse struct {
	Board  projections.GetBoardResult `json:"board"`
	Banner *bannerView                `json:"banner,omitempty"`
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// requestLocale is the Accept-Language header, or the configured default when absent.
func (a *app) requestLocale(r *http.Request) string {
	if al := r.Header.Get("Accept-Language"); al != "" {
		return al
	}
	return a.defaultLocale
}

func (a *app) queryBoard(r *http.Request, f activity.Filter) (projections.GetBoardResult, error) {
	return projections.QueryGetBoard(r.Context(), projections.GetBoardQuery{
		Filter: f,
		Locale: a.requestLocale(r),
	}, projections.GetBoardDeps{
		Board:      a.deps.Board,
		Translator: a.deps.Translator,
	})
}

func (a *app) currentBanner(visit *middleware.Visit) *bannerView {
	if visit == nil {
		return nil
	}
	b, ok := visit.Banners.Current()
	if !ok {
		return nil
	}
	return &bannerView{
		Kind:      string(b.Kind),
		Text:      b.Text,
		DismissMs: b.Remaining(a.now()).Milliseconds(),
	}
}

// handleBoard renders the board page for the filter state in the query string.
func (a *app) handleBoard(w http.ResponseWriter, r *http.Request) {
	result, err := a.queryBoard(r, listutil.ParseFilter(r.URL.Query()))
	if err != nil {
		internalError(w, err)
		return
	}

	visit, _ := middleware.VisitFromContext(r.Context())
	page := boardPage{
		Board:        result,
		Banner:       a.currentBanner(visit),
		FilterFields: filterFields(result.Filter),
	}
	if visit != nil {
		page.Draft = visit.Draft()
	}
	a.renderTemplate(w, r, "board.html", page)
}

// handleBoardAPI returns the same view as JSON.
func (a *app) handleBoardAPI(w http.ResponseWriter, r *http.Request) {
	result, err := a.queryBoard(r, listutil.ParseFilter(r.URL.Query()))
	if err != nil {
		internalError(w, err)
		return
	}
	visit, _ := middleware.VisitFromContext(r.Context())
	writeJSON(w, http.StatusOK, boardResponse{Board: result, Banner: a.currentBanner(visit)})
}

// handleSignUp posts the sign-up form and redirects back to the same view.
func (a *app) handleSignUp(w http.ResponseWriter, r *http.Request) {
	visit, ok := middleware.VisitFromContext(r.Context())
	if !ok {
		internalError(w, errNoVisit)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	filter := listutil.ParseFilter(r.PostForm)
	name := r.PostForm.Get("activity")
	email := r.PostForm.Get("email")

	outcome := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		Activity: name,
		Email:    email,
		Locale:   a.requestLocale(r),
	}, orchestrators.SignUpDeps{
		API:        a.deps.API,
		Reloader:   a.deps.Board,
		Banners:    visit.Banners,
		Translator: a.deps.Translator,
		IsVisible: func(n string) bool {
			return projections.IsActivityVisible(a.deps.Board, filter, n)
		},
		Mailer: a.deps.Mailer,
	})

	if outcome.ClearForm {
		visit.ClearDraft()
	} else {
		visit.SetDraft(middleware.Draft{Activity: name, Email: email})
	}
	http.Redirect(w, r, listutil.BoardURL(filter), http.StatusSeeOther)
}

// handleRemoveParticipant is the single handler behind every participant's removal button.
func (a *app) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	visit, ok := middleware.VisitFromContext(r.Context())
	if !ok {
		internalError(w, errNoVisit)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	key, err := activity.ParseParticipantKey(r.PostForm.Get("participant"))
	if err != nil {
		slog.Warn("participant_key_invalid", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	orchestrators.ExecuteUnregister(r.Context(), orchestrators.UnregisterInput{
		Activity: key.Activity,
		Email:    key.Email,
		Locale:   a.requestLocale(r),
	}, orchestrators.UnregisterDeps{
		API:        a.deps.API,
		Reloader:   a.deps.Board,
		Banners:    visit.Banners,
		Translator: a.deps.Translator,
	})
	http.Redirect(w, r, listutil.BoardURL(listutil.ParseFilter(r.PostForm)), http.StatusSeeOther)
}

// handleRefresh reloads the catalog on request.
func (a *app) handleRefresh(w http.ResponseWriter, r *http.Request) {
	visit, ok := middleware.VisitFromContext(r.Context())
	if !ok {
		internalError(w, errNoVisit)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	orchestrators.ExecuteRefresh(r.Context(), orchestrators.RefreshInput{Locale: a.requestLocale(r)}, orchestrators.RefreshDeps{
		Reloader:   a.deps.Board,
		Banners:    visit.Banners,
		Translator: a.deps.Translator,
	})
	http.Redirect(w, r, listutil.BoardURL(listutil.ParseFilter(r.PostForm)), http.StatusSeeOther)
}

// handlePerf returns the request and upstream timing summary.
// Query: window (duration, default 15m), top (default 10).
func (a *app) handlePerf(w http.ResponseWriter, r *http.Request) {
	if a.deps.Collector == nil {
		http.NotFound(w, r)
		return
	}
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			window = d
		}
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			top = n
		}
	}
	writeJSON(w, http.StatusOK, a.deps.Collector.Snapshot(a.now().Add(-window), top))
}

func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	loc := a.requestLocale(r)
	tpl, err := a.pages.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(template.FuncMap{
		"t":         func(key string) string { return a.deps.Translator.T(loc, key, nil) },
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteTemplate(w, templateName, data); err != nil {
		slog.Error("template_render_failed", "template", templateName, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

func filterFields(f activity.Filter) []hiddenField {
	q := listutil.FilterQuery(f)
	fields := make([]hiddenField, 0, len(q))
	for _, name := range []string{listutil.ParamSearch, listutil.ParamCategory, listutil.ParamSort} {
		if v := q.Get(name); v != "" {
			fields = append(fields, hiddenField{Name: name, Value: v})
		}
	}
	return fields
}
