// Package board holds the state of the sign-up board: the last fetched catalog and the message area.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"activityboard/internal/domain/activity"
	"activityboard/internal/observability"
)

// CatalogSource fetches the full catalog from the activities API.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) (activity.Catalog, error)
}

// LoadState describes the outcome of the most recent catalog fetch.
type LoadState struct {
	Loaded   bool // a catalog has been loaded at least once
	Failed   bool // the most recent fetch failed
	LoadedAt time.Time
}

// Controller owns the catalog the board renders from.
// INVARIANT: the catalog is only ever replaced as a whole
type Controller struct {
	source   CatalogSource
	collator *activity.Collator

	mu      sync.RWMutex
	catalog activity.Catalog
	state   LoadState
	now     func() time.Time
}

// NewController creates a Controller with an empty catalog.
// PRE: source is non-nil; collator may be nil (byte order)
func NewController(source CatalogSource, collator *activity.Collator) *Controller {
	return &Controller{
		source:   source,
		collator: collator,
		now:      time.Now,
	}
}

// Reload fetches the catalog and replaces the held copy.
// POST: on success the catalog is replaced and Failed is cleared;
// on failure the previous catalog is kept and Failed is set;
// a load abandoned because ctx was cancelled leaves the state untouched
func (c *Controller) Reload(ctx context.Context) error {
	catalog, err := c.source.FetchCatalog(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		slog.Debug("catalog_load_cancelled", "error", err)
		return err
	}
	if err != nil {
		slog.Error("catalog_load_failed", "error", err)
		c.mu.Lock()
		c.state.Failed = true
		c.mu.Unlock()
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.catalog = catalog
	c.state = LoadState{Loaded: true, LoadedAt: now}
	c.mu.Unlock()

	observability.RecordCatalogLoaded(len(catalog), now)
	slog.Debug("catalog_loaded", "activities", len(catalog))
	return nil
}

// Snapshot returns the current catalog and load state.
// The returned catalog must be treated as read-only.
func (c *Controller) Snapshot() (activity.Catalog, LoadState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog, c.state
}

// Comparer returns the collator used for ordering, or nil for byte order.
func (c *Controller) Comparer() activity.Comparer {
	if c.collator == nil {
		return nil
	}
	return c.collator
}
