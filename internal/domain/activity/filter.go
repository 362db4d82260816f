package activity

import "strings"

// CategoryAll is the category filter value that matches every activity.
const CategoryAll = "all"

// SortMode selects the order of the visible list.
type SortMode string

// Sort modes offered by the board. SortNameAsc is the default.
const (
	SortNameAsc  SortMode = "name-asc"
	SortNameDesc SortMode = "name-desc"
	SortTimeAsc  SortMode = "time-asc"
	SortTimeDesc SortMode = "time-desc"
)

// SortModes lists the sort modes in the order the sort control shows them.
var SortModes = []SortMode{SortNameAsc, SortNameDesc, SortTimeAsc, SortTimeDesc}

// ParseSortMode maps a control value to a SortMode, defaulting to SortNameAsc.
func ParseSortMode(s string) SortMode {
	for _, m := range SortModes {
		if string(m) == s {
			return m
		}
	}
	return SortNameAsc
}

// Filter is the explicit view state of the board: search text, category and order.
// It is a value; every render receives its own copy.
type Filter struct {
	Search   string
	Category string
	Sort     SortMode
}

// NewFilter builds a normalised Filter from raw control values.
// POST: Category is CategoryAll when blank; Sort is a known mode
func NewFilter(search, category, sort string) Filter {
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryAll
	}
	return Filter{
		Search:   search,
		Category: category,
		Sort:     ParseSortMode(sort),
	}
}

// Term returns the search term as compared: trimmed and lowercased.
func (f Filter) Term() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

// Matches reports whether the entry passes both the category and search predicates.
// An empty Category is treated as CategoryAll.
func (f Filter) Matches(e Entry) bool {
	if f.Category != "" && f.Category != CategoryAll && e.Activity.Category != f.Category {
		return false
	}
	term := f.Term()
	if term == "" {
		return true
	}
	return strings.Contains(haystack(e), term)
}

func haystack(e Entry) string {
	return strings.ToLower(strings.Join([]string{
		e.Name,
		e.Activity.Description,
		e.Activity.Schedule,
		e.Activity.Category,
	}, " "))
}
