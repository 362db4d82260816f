package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultCategoryLabel is shown for activities without a category.
const DefaultCategoryLabel = "General"

// Domain errors
var (
	ErrCatalogNotObject = errors.New("activity catalog must be a JSON object")
)

// Activity holds the details the activities API returns for one activity.
// Category and SortKey are optional and empty when absent.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	Category        string   `json:"category,omitempty"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
	SortKey         string   `json:"sort_key,omitempty"`
}

// SpotsLeft returns the number of free places.
// INVARIANT: not clamped; a negative value means the API over-filled the activity
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// CategoryLabel returns the category, or DefaultCategoryLabel when absent.
func (a Activity) CategoryLabel() string {
	if a.Category == "" {
		return DefaultCategoryLabel
	}
	return a.Category
}

// HasParticipant reports whether email is already signed up.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Entry pairs an activity with its name, which is the catalog key.
type Entry struct {
	Name     string
	Activity Activity
}

// Catalog is the full set of activities in the order the server sent them.
type Catalog []Entry

// Lookup returns the activity with the given name.
func (c Catalog) Lookup(name string) (Activity, bool) {
	for _, e := range c {
		if e.Name == name {
			return e.Activity, true
		}
	}
	return Activity{}, false
}

// Names returns the activity names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, e := range c {
		names = append(names, e.Name)
	}
	return names
}

// DecodeCatalog reads a JSON object of name -> activity, keeping the key order.
// A repeated key keeps its first position and its last value.
// PRE: r yields a JSON object
// POST: returns the catalog in document order, or an error if the body is not an object
func DecodeCatalog(r io.Reader) (Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrCatalogNotObject
	}

	catalog := Catalog{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode catalog key: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode catalog: unexpected key %v", tok)
		}

		var a Activity
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode activity %q: %w", name, err)
		}

		if i, seen := index[name]; seen {
			catalog[i].Activity = a
			continue
		}
		index[name] = len(catalog)
		catalog = append(catalog, Entry{Name: name, Activity: a})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode catalog end: %w", err)
	}
	return catalog, nil
}
