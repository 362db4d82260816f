// Package listutil maps board view state to and from URL query parameters.
package listutil

import (
	"net/url"

	"activityboard/internal/domain/activity"
)

// Query parameter names used by the board's filter controls.
const (
	ParamSearch   = "q"
	ParamCategory = "category"
	ParamSort     = "sort"
)

// ParseFilter extracts the filter state from URL query values.
// PRE: none
// POST: returns a normalised Filter; unknown sort values fall back to name-asc
func ParseFilter(q url.Values) activity.Filter {
	return activity.NewFilter(q.Get(ParamSearch), q.Get(ParamCategory), q.Get(ParamSort))
}

// FilterQuery encodes a filter so a redirect can restore the same view.
// Default values are omitted to keep URLs short.
// POST: ParseFilter(FilterQuery(f)) is equivalent to f
func FilterQuery(f activity.Filter) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set(ParamSearch, f.Search)
	}
	if f.Category != "" && f.Category != activity.CategoryAll {
		q.Set(ParamCategory, f.Category)
	}
	if f.Sort != "" && f.Sort != activity.SortNameAsc {
		q.Set(ParamSort, string(f.Sort))
	}
	return q
}

// BoardURL returns the board path carrying the filter state.
func BoardURL(f activity.Filter) string {
	q := FilterQuery(f)
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
