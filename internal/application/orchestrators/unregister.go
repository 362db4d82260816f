package orchestrators

import (
	"context"
	"log/slog"

	"activityboard/internal/domain/banner"
	"activityboard/internal/domain/locale"
)

// UnregisterInput carries input for the unregister orchestrator.
type UnregisterInput struct {
	Activity string
	Email    string
	Locale   string
}

// UnregisterDeps holds dependencies for Unregister.
type UnregisterDeps struct {
	API        ActivityAPI
	Reloader   Reloader
	Banners    BannerShower
	Translator locale.Translator
}

// ExecuteUnregister removes a participant from an activity and reports the result through a banner.
// PRE: deps.API, deps.Banners and deps.Translator are non-nil
// POST: exactly one banner is shown; the catalog is reloaded only on success
func ExecuteUnregister(ctx context.Context, input UnregisterInput, deps UnregisterDeps) ActionOutcome {
	tr, loc := deps.Translator, input.Locale

	if missingFields(input.Activity, input.Email) {
		return ActionOutcome{Banner: deps.Banners.Show(banner.KindError, tr.T(loc, locale.KeyMissingFields, nil))}
	}

	message, err := deps.API.Unregister(ctx, input.Activity, input.Email)
	if err != nil {
		logActionFailure("unregister_failed", err, input.Activity, input.Email)
		text := failureText(err, tr, loc, locale.KeyUnregisterFailed)
		return ActionOutcome{Banner: deps.Banners.Show(banner.KindError, text)}
	}

	slog.Info("unregister_succeeded", "activity", input.Activity, "email", input.Email)
	return ActionOutcome{
		Banner:    deps.Banners.Show(banner.KindSuccess, message),
		Succeeded: true,
		Reloaded:  reloadAfter(ctx, deps.Reloader),
	}
}
