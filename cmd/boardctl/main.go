package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"activityboard/internal/adapters/activityapi"
	emailPkg "activityboard/internal/adapters/email"
	"activityboard/internal/adapters/i18n"
	"activityboard/internal/application/board"
	"activityboard/internal/application/orchestrators"
	"activityboard/internal/application/projections"
	"activityboard/internal/config"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/banner"
)

// errActionFailed signals that an error banner was printed.
var errActionFailed = errors.New("action failed")

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		if !errors.Is(err, errActionFailed) {
			slog.Error("boardctl_failed", "error", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "boardctl",
		Usage: "Browse activities and manage sign-ups from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "upstream",
				Usage:   "Base URL of the activities API",
				EnvVars: []string{"UPSTREAM_URL"},
				Value:   "http://localhost:8000",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for each activities API call",
				EnvVars: []string{"UPSTREAM_TIMEOUT"},
				Value:   10 * time.Second,
			},
			&cli.StringFlag{
				Name:    "locale",
				Usage:   "Locale for messages and name ordering",
				EnvVars: []string{"BOARD_LOCALE"},
				Value:   "en",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "resend-api-key",
				Usage:   "Send sign-up confirmations through Resend",
				EnvVars: []string{"RESEND_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "resend-from",
				Usage:   "Sender address for confirmation emails",
				EnvVars: []string{"RESEND_FROM"},
				Value:   "Activity Board <noreply@example.org>",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(config.NewLogger(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			listCommand(),
			categoriesCommand(),
			signupCommand(),
			unregisterCommand(),
		},
	}
}

// session is one CLI invocation's view of the board.
type session struct {
	client     *activityapi.Client
	controller *board.Controller
	translator *i18n.Translator
	banners    *board.Notifier
	mailer     emailPkg.Sender
	locale     string
	out        io.Writer
	errOut     io.Writer
}

// openSession builds the board and loads the catalog once.
func openSession(c *cli.Context) *session {
	loc := c.String("locale")
	client := activityapi.NewClient(c.String("upstream"), &http.Client{
		Timeout:   c.Duration("timeout"),
		Transport: activityapi.NewTimedTransport(http.DefaultTransport, nil, 0),
	})

	s := &session{
		client:     client,
		controller: board.NewController(client, activity.NewCollator(loc)),
		translator: i18n.NewTranslator(loc),
		banners:    board.NewNotifier(banner.DefaultDismissAfter),
		locale:     loc,
		out:        c.App.Writer,
		errOut:     c.App.ErrWriter,
	}
	if key := c.String("resend-api-key"); key != "" {
		s.mailer = emailPkg.NewResendSender(key, c.String("resend-from"))
	}
	if err := s.controller.Reload(c.Context); err != nil {
		slog.Debug("catalog_load_failed", "error", err)
	}
	return s
}

func (s *session) board(ctx context.Context, f activity.Filter) (projections.GetBoardResult, error) {
	return projections.QueryGetBoard(ctx, projections.GetBoardQuery{Filter: f, Locale: s.locale}, projections.GetBoardDeps{
		Board:      s.controller,
		Translator: s.translator,
	})
}

// report prints the outcome banner; error banners go to the error writer and fail the command.
func (s *session) report(outcome orchestrators.ActionOutcome) error {
	b := outcome.Banner
	if b.IsError() {
		fmt.Fprintf(s.errOut, "%s: %s\n", b.Kind, b.Text)
		return errActionFailed
	}
	fmt.Fprintf(s.out, "%s: %s\n", b.Kind, b.Text)
	return nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show the visible activities for a search, category and sort order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Case-insensitive text to match against name and description"},
			&cli.StringFlag{Name: "category", Usage: "Category to show", Value: activity.CategoryAll},
			&cli.StringFlag{Name: "sort", Usage: "name-asc, name-desc, time-asc or time-desc", Value: string(activity.SortNameAsc)},
		},
		Action: func(c *cli.Context) error {
			s := openSession(c)
			result, err := s.board(c.Context, activity.NewFilter(c.String("search"), c.String("category"), c.String("sort")))
			if err != nil {
				return err
			}
			return writeBoard(s.out, s.errOut, result)
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Show the category filter options",
		Action: func(c *cli.Context) error {
			s := openSession(c)
			result, err := s.board(c.Context, activity.NewFilter("", "", ""))
			if err != nil {
				return err
			}
			if result.LoadFailed {
				fmt.Fprintln(s.errOut, result.Notice)
				return errActionFailed
			}
			for _, opt := range result.Categories {
				fmt.Fprintf(s.out, "%s\t%s\n", opt.Value, opt.Label)
			}
			return nil
		},
	}
}

func participantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Usage: "Activity name", Required: true},
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Participant email", Required: true},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Sign a participant up for an activity",
		Flags: participantFlags(),
		Action: func(c *cli.Context) error {
			s := openSession(c)
			outcome := orchestrators.ExecuteSignUp(c.Context, orchestrators.SignUpInput{
				Activity: c.String("activity"),
				Email:    c.String("email"),
				Locale:   s.locale,
			}, orchestrators.SignUpDeps{
				API:        s.client,
				Reloader:   s.controller,
				Banners:    s.banners,
				Translator: s.translator,
				Mailer:     s.mailer,
			})
			return s.report(outcome)
		},
	}
}

func unregisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "unregister",
		Usage: "Remove a participant from an activity",
		Flags: participantFlags(),
		Action: func(c *cli.Context) error {
			s := openSession(c)
			outcome := orchestrators.ExecuteUnregister(c.Context, orchestrators.UnregisterInput{
				Activity: c.String("activity"),
				Email:    c.String("email"),
				Locale:   s.locale,
			}, orchestrators.UnregisterDeps{
				API:        s.client,
				Reloader:   s.controller,
				Banners:    s.banners,
				Translator: s.translator,
			})
			return s.report(outcome)
		},
	}
}

// writeBoard prints the visible list as a table, or the notice that replaces it.
func writeBoard(out, errOut io.Writer, result projections.GetBoardResult) error {
	if result.LoadFailed {
		fmt.Fprintln(errOut, result.Notice)
		return errActionFailed
	}
	if result.Empty {
		fmt.Fprintln(out, result.Notice)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSCHEDULE\tAVAILABILITY\tPARTICIPANTS")
	for _, card := range result.Cards {
		emails := make([]string, 0, len(card.Participants))
		for _, p := range card.Participants {
			emails = append(emails, p.Email)
		}
		participants := strings.Join(emails, ", ")
		if participants == "" {
			participants = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", card.Name, card.Category, card.Schedule, card.SpotsLeftText, participants)
	}
	return tw.Flush()
}
