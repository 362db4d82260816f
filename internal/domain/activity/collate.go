package activity

import (
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparer orders two strings, returning -1, 0 or +1.
type Comparer interface {
	Compare(a, b string) int
}

// Collator compares strings with the rules of a locale.
// The underlying x/text collator keeps scratch buffers, so calls are serialised.
type Collator struct {
	mu     sync.Mutex
	c      *collate.Collator
	locale language.Tag
}

// NewCollator builds a Collator for a BCP 47 locale, falling back to English.
func NewCollator(locale string) *Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Collator{c: collate.New(tag), locale: tag}
}

// Locale returns the tag the collator was built for.
func (c *Collator) Locale() language.Tag {
	return c.locale
}

// Compare implements Comparer.
func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// byteOrder is used when no collator is supplied.
type byteOrder struct{}

func (byteOrder) Compare(a, b string) int { return strings.Compare(a, b) }

func comparerOrDefault(cmp Comparer) Comparer {
	if cmp == nil {
		return byteOrder{}
	}
	return cmp
}
