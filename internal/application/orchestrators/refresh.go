package orchestrators

import (
	"context"

	"activityboard/internal/domain/banner"
	"activityboard/internal/domain/locale"
)

// RefreshInput carries input for the refresh orchestrator.
type RefreshInput struct {
	Locale string
}

// RefreshDeps holds dependencies for Refresh.
type RefreshDeps struct {
	Reloader   Reloader
	Banners    BannerShower
	Translator locale.Translator
}

// ExecuteRefresh reloads the catalog on request.
// POST: a success banner is shown when the reload worked; a failed reload shows no banner
// because the list itself carries the failure message
func ExecuteRefresh(ctx context.Context, input RefreshInput, deps RefreshDeps) ActionOutcome {
	if err := deps.Reloader.Reload(ctx); err != nil {
		return ActionOutcome{}
	}
	return ActionOutcome{
		Banner:    deps.Banners.Show(banner.KindSuccess, deps.Translator.T(input.Locale, locale.KeyRefreshed, nil)),
		Succeeded: true,
		Reloaded:  true,
	}
}
