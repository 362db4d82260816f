package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"activityboard/internal/adapters/activityapi"
	"activityboard/internal/domain/banner"
	"activityboard/internal/domain/locale"
)

// ActivityAPI performs the remote sign-up and unregister actions.
// Both return the server's success message.
type ActivityAPI interface {
	SignUp(ctx context.Context, name, email string) (string, error)
	Unregister(ctx context.Context, name, email string) (string, error)
}

// Reloader refreshes the held catalog from the activities API.
type Reloader interface {
	Reload(ctx context.Context) error
}

// BannerShower displays a message and schedules its dismissal.
type BannerShower interface {
	Show(kind banner.Kind, text string) banner.Banner
}

// ActionOutcome reports what an action did to the board.
type ActionOutcome struct {
	Banner    banner.Banner
	Succeeded bool
	Reloaded  bool // a catalog reload was attempted and succeeded
	ClearForm bool // the sign-up form should be reset
}

// failureText picks the banner text for a failed action.
// Rejections show the server detail or the generic message; anything else shows the
// fixed client message for the action.
func failureText(err error, tr locale.Translator, loc, unreachableKey string) string {
	var rejected *activityapi.RejectedError
	if errors.As(err, &rejected) {
		if rejected.Detail != "" {
			return rejected.Detail
		}
		return tr.T(loc, locale.KeyGenericError, nil)
	}
	return tr.T(loc, unreachableKey, nil)
}

// reloadAfter refreshes the catalog after a successful action.
// A failed reload is already logged by the reloader and leaves the catalog stale.
// The reload outlives the caller's cancellation: the mutation already happened upstream.
func reloadAfter(ctx context.Context, r Reloader) bool {
	if r == nil {
		return false
	}
	return r.Reload(context.WithoutCancel(ctx)) == nil
}

func missingFields(name, email string) bool {
	return strings.TrimSpace(name) == "" || strings.TrimSpace(email) == ""
}

func logActionFailure(event string, err error, name, email string) {
	if errors.Is(err, activityapi.ErrUnreachable) {
		slog.Error(event, "activity", name, "email", email, "error", err)
		return
	}
	slog.Warn(event, "activity", name, "email", email, "error", err)
}
