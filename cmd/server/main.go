package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activityboard/internal/adapters/activityapi"
	emailPkg "activityboard/internal/adapters/email"
	web "activityboard/internal/adapters/http"
	"activityboard/internal/adapters/http/middleware"
	"activityboard/internal/adapters/http/perf"
	"activityboard/internal/adapters/i18n"
	"activityboard/internal/application/board"
	"activityboard/internal/config"
	"activityboard/internal/domain/activity"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))
	if cfg.CSRFKeyGenerated {
		slog.Warn("csrf_key_generated", "hint", "sessions won't survive restart; set BOARD_CSRF_KEY")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Performance instrumentation: time every upstream call and every request
	collector := perf.NewCollector(perf.DefaultRingSize)
	client := activityapi.NewClient(cfg.UpstreamURL, &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: activityapi.NewTimedTransport(http.DefaultTransport, collector, cfg.SlowUpstreamMs),
	})

	controller := board.NewController(client, activity.NewCollator(cfg.Locale))
	if err := controller.Reload(ctx); err != nil {
		// The board starts anyway and shows the load failure until a reload succeeds.
		slog.Warn("initial_catalog_load_failed", "upstream", cfg.UpstreamURL, "error", err)
	}

	var mailer emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		mailer = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		mailer = emailPkg.NewNoopSender()
		slog.Info("email_sender_configured", "provider", "noop")
	}

	visitors := middleware.NewVisitorStore(func() *board.Notifier {
		return board.NewNotifier(cfg.BannerDismissAfter)
	})
	go sweepVisitors(ctx, visitors, 10*time.Minute)

	handler := web.NewMux(web.Deps{
		Board:      controller,
		API:        client,
		Translator: i18n.NewTranslator(cfg.Locale),
		Mailer:     mailer,
		Visitors:   visitors,
		Collector:  collector,
	}, web.Options{
		DefaultLocale:      cfg.Locale,
		CSRFKey:            cfg.CSRFKey,
		TrustedOrigins:     cfg.TrustedOrigins,
		Secure:             cfg.IsProduction(),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2*cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("board_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "upstream", cfg.UpstreamURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful_shutdown_failed", "error", err)
	}
}

// sweepVisitors drops idle visits until ctx is done.
func sweepVisitors(ctx context.Context, visitors *middleware.VisitorStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := visitors.Sweep(); n > 0 {
				slog.Debug("visitors_swept", "removed", n)
			}
		}
	}
}
