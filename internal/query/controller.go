// Package query owns the mutable view parameters. The controller applies
// user intents to the query state one at a time; readers get deep copies.
package query

import (
	"sync"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

// Controller serializes mutations of a QueryState. It holds no token data;
// it only decides what the view derivation should be asked for next.
type Controller struct {
	mu    sync.Mutex
	state domain.QueryState
}

// NewController creates a controller starting from the default query state.
func NewController() *Controller {
	return &Controller{state: domain.DefaultQueryState()}
}

// State returns a deep copy of the current query state.
func (c *Controller) State() domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetSearch replaces the search text and resets to the first page, since
// the old page index is meaningless against a new result set.
func (c *Controller) SetSearch(text string) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchText = text
	c.state.Page = 1
	return c.state.Clone()
}

// SetTab switches the active tab and resets to the first page. Sort key and
// direction carry over.
func (c *Controller) SetTab(tab domain.Tab) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ActiveTab = tab
	c.state.Page = 1
	return c.state.Clone()
}

// ToggleSort applies a header click: selecting the active key flips the
// direction, selecting a new key starts it descending. Either way the page
// resets to 1.
func (c *Controller) ToggleSort(key domain.SortKey) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.SortKey == key {
		if c.state.SortDirection == domain.SortDesc {
			c.state.SortDirection = domain.SortAsc
		} else {
			c.state.SortDirection = domain.SortDesc
		}
	} else {
		c.state.SortKey = key
		c.state.SortDirection = domain.SortDesc
	}
	c.state.Page = 1
	return c.state.Clone()
}

// SetPage requests a page. Values below 1 clamp to 1; clamping against the
// upper bound happens at derivation time, where the result size is known.
func (c *Controller) SetPage(page int) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	c.state.Page = page
	return c.state.Clone()
}

// ToggleWatchlist adds the token to the watchlist if absent, removes it if
// present. Toggling twice restores the original state.
func (c *Controller) ToggleWatchlist(id string) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.WatchlistIDs[id] {
		delete(c.state.WatchlistIDs, id)
	} else {
		c.state.WatchlistIDs[id] = true
	}
	return c.state.Clone()
}

// SetLiveUpdates turns live price ticks on or off. The table contents are
// untouched; a paused table simply stops receiving merges.
func (c *Controller) SetLiveUpdates(on bool) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LiveUpdates = on
	return c.state.Clone()
}

// SetDensity records the row density rendering preference.
func (c *Controller) SetDensity(d domain.Density) domain.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Density = d
	return c.state.Clone()
}
