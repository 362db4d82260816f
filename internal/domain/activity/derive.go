package activity

import "sort"

// Derive returns the visible list: the catalog entries that pass the filter, in sort order.
// PRE: catalog may be empty; cmp may be nil (byte order)
// POST: returns a new slice; catalog is not modified
// INVARIANT: sorting is stable, so equal keys keep catalog order
func Derive(catalog Catalog, f Filter, cmp Comparer) []Entry {
	cmp = comparerOrDefault(cmp)

	visible := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		if f.Matches(e) {
			visible = append(visible, e)
		}
	}

	less := lessFor(f.Sort, cmp)
	sort.SliceStable(visible, func(i, j int) bool {
		return less(visible[i], visible[j])
	})
	return visible
}

func lessFor(mode SortMode, cmp Comparer) func(a, b Entry) bool {
	switch mode {
	case SortNameDesc:
		return func(a, b Entry) bool { return cmp.Compare(b.Name, a.Name) < 0 }
	case SortTimeAsc:
		return func(a, b Entry) bool { return cmp.Compare(a.Activity.SortKey, b.Activity.SortKey) < 0 }
	case SortTimeDesc:
		return func(a, b Entry) bool { return cmp.Compare(b.Activity.SortKey, a.Activity.SortKey) < 0 }
	default:
		return func(a, b Entry) bool { return cmp.Compare(a.Name, b.Name) < 0 }
	}
}

// CategorySelection is the content of the category filter control.
type CategorySelection struct {
	Options  []string // CategoryAll first, then the sorted distinct categories
	Selected string
}

// CategoryOptions computes the category filter options from the full catalog.
// The previous selection is kept when it is still offered, otherwise it resets to CategoryAll.
// A catalog category spelled like the sentinel is not offered separately:
// selecting CategoryAll already shows those activities.
// POST: Options[0] == CategoryAll; no empty or duplicate values
func CategoryOptions(catalog Catalog, previous string, cmp Comparer) CategorySelection {
	cmp = comparerOrDefault(cmp)

	seen := make(map[string]bool)
	var categories []string
	for _, e := range catalog {
		c := e.Activity.Category
		if c == "" || c == CategoryAll || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return cmp.Compare(categories[i], categories[j]) < 0
	})

	selected := CategoryAll
	if seen[previous] {
		selected = previous
	}
	return CategorySelection{
		Options:  append([]string{CategoryAll}, categories...),
		Selected: selected,
	}
}
