package domain

import "sort"

// Tab selects which slice of the universe the table shows. The first three
// match token phases; TabWatchlist shows watchlisted tokens regardless of
// phase.
type Tab string

const (
	TabNew       Tab = "new"
	TabFinal     Tab = "final"
	TabMigrated  Tab = "migrated"
	TabWatchlist Tab = "watchlist"
)

// SortKey names the numeric column the table is ordered by.
type SortKey string

const (
	SortByMarketCap SortKey = "marketCap"
	SortByLiquidity SortKey = "liquidity"
	SortByVolume24h SortKey = "volume24h"
	SortByTxns      SortKey = "txns"
	SortByScore     SortKey = "score"
)

// SortDirection is the ordering direction for the active sort key.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Density is a rendering hint for row height. The core never reads it.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

// DefaultPageSize is the fixed number of rows per page.
const DefaultPageSize = 10

// QueryState holds every user-driven view parameter. It is owned by the
// query controller; everything else sees copies.
type QueryState struct {
	SearchText    string          `json:"searchText"`
	ActiveTab     Tab             `json:"activeTab"`
	SortKey       SortKey         `json:"sortKey"`
	SortDirection SortDirection   `json:"sortDirection"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
	WatchlistIDs  map[string]bool `json:"-"`
	LiveUpdates   bool            `json:"liveUpdates"`
	Density       Density         `json:"density"`
}

// DefaultQueryState returns the session-start view parameters.
func DefaultQueryState() QueryState {
	return QueryState{
		ActiveTab:     TabNew,
		SortKey:       SortByMarketCap,
		SortDirection: SortDesc,
		Page:          1,
		PageSize:      DefaultPageSize,
		WatchlistIDs:  make(map[string]bool),
		LiveUpdates:   true,
		Density:       DensityComfortable,
	}
}

// Clone returns a deep copy. QueryState contains a map, so plain struct
// assignment would alias the watchlist.
func (q QueryState) Clone() QueryState {
	out := q
	out.WatchlistIDs = make(map[string]bool, len(q.WatchlistIDs))
	for id := range q.WatchlistIDs {
		out.WatchlistIDs[id] = true
	}
	return out
}

// Watchlist returns the watchlisted IDs as a sorted slice for display and
// serialization.
func (q QueryState) Watchlist() []string {
	ids := make([]string, 0, len(q.WatchlistIDs))
	for id := range q.WatchlistIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
