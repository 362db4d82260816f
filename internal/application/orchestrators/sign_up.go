package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	emailAdapter "activityboard/internal/adapters/email"
	"activityboard/internal/domain/banner"
	"activityboard/internal/domain/locale"
)

// SignUpInput carries input for the sign-up orchestrator.
type SignUpInput struct {
	Activity string
	Email    string
	Locale   string
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	API        ActivityAPI
	Reloader   Reloader
	Banners    BannerShower
	Translator locale.Translator
	// IsVisible reports whether the activity is in the list the visitor was looking at.
	// Nil skips the check.
	IsVisible func(name string) bool
	// Mailer sends the optional confirmation email. Nil disables it.
	Mailer emailAdapter.Sender
}

// ExecuteSignUp signs a participant up for an activity and reports the result through a banner.
// PRE: deps.API, deps.Banners and deps.Translator are non-nil
// POST: exactly one banner is shown; on success the catalog is reloaded and the form cleared
// INVARIANT: no remote call is made when a field is blank or the activity is not visible
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) ActionOutcome {
	tr, loc := deps.Translator, input.Locale

	if missingFields(input.Activity, input.Email) {
		return ActionOutcome{Banner: deps.Banners.Show(banner.KindError, tr.T(loc, locale.KeyMissingFields, nil))}
	}
	if deps.IsVisible != nil && !deps.IsVisible(input.Activity) {
		slog.Info("signup_hidden_activity", "activity", input.Activity)
		return ActionOutcome{Banner: deps.Banners.Show(banner.KindError, tr.T(loc, locale.KeyHiddenActivity, nil))}
	}

	email := strings.TrimSpace(input.Email)
	message, err := deps.API.SignUp(ctx, input.Activity, email)
	if err != nil {
		logActionFailure("signup_failed", err, input.Activity, email)
		text := failureText(err, tr, loc, locale.KeySignUpFailed)
		return ActionOutcome{Banner: deps.Banners.Show(banner.KindError, text)}
	}

	slog.Info("signup_succeeded", "activity", input.Activity, "email", email)
	outcome := ActionOutcome{
		Banner:    deps.Banners.Show(banner.KindSuccess, message),
		Succeeded: true,
		ClearForm: true,
	}
	outcome.Reloaded = reloadAfter(ctx, deps.Reloader)

	if deps.Mailer != nil {
		sendConfirmation(ctx, deps.Mailer, tr, loc, input.Activity, email, message)
	}
	return outcome
}

// sendConfirmation emails the participant. Failures are logged and never change the outcome.
func sendConfirmation(ctx context.Context, mailer emailAdapter.Sender, tr locale.Translator, loc, name, email, message string) {
	data := map[string]any{"Activity": name, "Email": email, "Message": message}
	body, err := emailAdapter.MarkdownToHTML(tr.T(loc, locale.KeyConfirmBody, data))
	if err != nil {
		slog.Error("confirmation_render_failed", "activity", name, "error", err)
		return
	}
	_, err = mailer.Send(ctx, emailAdapter.SendRequest{
		To:      []string{email},
		Subject: tr.T(loc, locale.KeyConfirmSubject, data),
		HTML:    body,
	})
	if err != nil {
		slog.Error("confirmation_send_failed", "activity", name, "email", email, "error", err)
	}
}
