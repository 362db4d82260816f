package listutil

import (
	"net/url"
	"testing"

	"activityboard/internal/domain/activity"
)

// TestParseFilter_Defaults verifies default filter state when no query values are provided.
func TestParseFilter_Defaults(t *testing.T) {
	f := ParseFilter(url.Values{})
	if f.Search != "" {
		t.Errorf("expected empty search, got %q", f.Search)
	}
	if f.Category != activity.CategoryAll {
		t.Errorf("expected category %q, got %q", activity.CategoryAll, f.Category)
	}
	if f.Sort != activity.SortNameAsc {
		t.Errorf("expected sort %q, got %q", activity.SortNameAsc, f.Sort)
	}
}

// TestParseFilter_Valid verifies correct parsing of all three controls.
func TestParseFilter_Valid(t *testing.T) {
	q := url.Values{"q": {" Chess "}, "category": {"Games"}, "sort": {"time-desc"}}
	f := ParseFilter(q)
	if f.Search != " Chess " {
		t.Errorf("expected raw search to be kept, got %q", f.Search)
	}
	if f.Term() != "chess" {
		t.Errorf("expected term chess, got %q", f.Term())
	}
	if f.Category != "Games" {
		t.Errorf("expected category Games, got %q", f.Category)
	}
	if f.Sort != activity.SortTimeDesc {
		t.Errorf("expected sort time-desc, got %q", f.Sort)
	}
}

// TestParseFilter_InvalidSort verifies fallback to name-asc for unknown sort values.
func TestParseFilter_InvalidSort(t *testing.T) {
	f := ParseFilter(url.Values{"sort": {"popularity"}})
	if f.Sort != activity.SortNameAsc {
		t.Errorf("expected name-asc for unknown sort, got %q", f.Sort)
	}
}

// TestFilterQuery_RoundTrip verifies a filter survives encoding into a redirect URL.
func TestFilterQuery_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   activity.Filter
	}{
		{"defaults", activity.NewFilter("", "", "")},
		{"search only", activity.NewFilter("art & craft", "", "")},
		{"all fields", activity.NewFilter("club", "Sports", "time-asc")},
		{"name desc", activity.NewFilter("", "all", "name-desc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFilter(FilterQuery(tt.in))
			if got != tt.in {
				t.Errorf("round trip = %+v, want %+v", got, tt.in)
			}
		})
	}
}

// TestFilterQuery_OmitsDefaults verifies default values are left out of the query.
func TestFilterQuery_OmitsDefaults(t *testing.T) {
	q := FilterQuery(activity.NewFilter("", "all", "name-asc"))
	if len(q) != 0 {
		t.Errorf("expected empty query, got %v", q)
	}
}

// TestBoardURL verifies the redirect target for default and filtered views.
func TestBoardURL(t *testing.T) {
	if got := BoardURL(activity.NewFilter("", "", "")); got != "/" {
		t.Errorf("BoardURL(default) = %q, want /", got)
	}
	got := BoardURL(activity.NewFilter("chess", "Games", "time-asc"))
	want := "/?category=Games&q=chess&sort=time-asc"
	if got != want {
		t.Errorf("BoardURL = %q, want %q", got, want)
	}
}
