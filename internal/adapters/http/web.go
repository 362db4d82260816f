// Package web serves the activity board: the HTML page, its form actions and the JSON view.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"activityboard/internal/adapters/email"
	"activityboard/internal/adapters/http/middleware"
	"activityboard/internal/adapters/http/perf"
	"activityboard/internal/application/orchestrators"
	"activityboard/internal/application/projections"
	"activityboard/internal/domain/locale"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Board is the catalog holder the handlers read from and reload.
type Board interface {
	projections.BoardSource
	orchestrators.Reloader
}

// Deps holds the collaborators of the board server.
type Deps struct {
	Board      Board
	API        orchestrators.ActivityAPI
	Translator locale.Translator
	Mailer     email.Sender // optional sign-up confirmations
	Visitors   *middleware.VisitorStore
	Collector  *perf.Collector // optional; enables /debug/perf
}

// Options tunes the middleware chain.
type Options struct {
	DefaultLocale      string
	CSRFKey            []byte // 32 bytes
	TrustedOrigins     []string
	Secure             bool // HTTPS-only cookies
	RateLimitPerSecond int
	SlowRequestMs      int
}

// DefaultRateLimitPerSecond is used when Options leaves the rate limit unset.
const DefaultRateLimitPerSecond = 10

type app struct {
	deps          Deps
	defaultLocale string
	pages         *template.Template
	now           func() time.Time
}

// NewMux wires HTTP handlers and the middleware chain for the board.
// PRE: deps.Board, deps.API, deps.Translator and deps.Visitors are non-nil; opts.CSRFKey is 32 bytes
func NewMux(deps Deps, opts Options) http.Handler {
	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = DefaultRateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Applied inner to outer: Timing -> RateLimit -> SecurityHeaders -> CSRF -> Visitor -> Mux
	return middleware.Chain(Routes(deps, opts.DefaultLocale),
		middleware.Visitor(deps.Visitors, opts.Secure),
		middleware.CSRF(opts.CSRFKey, opts.TrustedOrigins, opts.Secure),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, opts.SlowRequestMs),
	)
}

// Routes returns the board's routes without the middleware chain.
// Handlers expect a visit in the request context; see middleware.Visitor.
func Routes(deps Deps, defaultLocale string) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	a := &app{
		deps:          deps,
		defaultLocale: defaultLocale,
		pages:         template.Must(template.New("layout.html").Funcs(baseFuncs).ParseFS(templateFS, "templates/*.html")),
		now:           time.Now,
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleBoard)
	mux.HandleFunc("GET /api/board", a.handleBoardAPI)
	mux.HandleFunc("POST /signup", a.handleSignUp)
	mux.HandleFunc("POST /participants/remove", a.handleRemoveParticipant)
	mux.HandleFunc("POST /refresh", a.handleRefresh)
	mux.HandleFunc("GET /debug/perf", a.handlePerf)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return mux
}
