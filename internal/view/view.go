// Package view derives the visible table page from a canonical row set and
// a query state. Derivation is a pure function: it never mutates its inputs
// and the same inputs always produce the same page.
package view

import (
	"sort"
	"strings"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

// Page is one derived table page plus the totals pagination needs.
type Page struct {
	Items      []domain.Row `json:"items"`
	TotalCount int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
	Page       int          `json:"page"`
}

// Derive runs the full pipeline: search filter, tab filter, stable sort,
// paginate. The requested page is clamped into [1, totalPages]; an empty
// result still reports totalPages = 1 so page 1 is always addressable.
func Derive(rows []domain.Row, q domain.QueryState) Page {
	filtered := filterSearch(rows, q.SearchText)
	filtered = filterTab(filtered, q)
	sortRows(filtered, q.SortKey, q.SortDirection)
	return paginate(filtered, q.Page, pageSize(q))
}

func pageSize(q domain.QueryState) int {
	if q.PageSize > 0 {
		return q.PageSize
	}
	return domain.DefaultPageSize
}

// filterSearch keeps rows whose name or symbol contains the trimmed query,
// case-insensitively. A blank query keeps everything.
func filterSearch(rows []domain.Row, text string) []domain.Row {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return append([]domain.Row(nil), rows...)
	}

	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Token.Name), needle) ||
			strings.Contains(strings.ToLower(r.Token.Symbol), needle) {
			out = append(out, r)
		}
	}
	return out
}

// filterTab keeps rows matching the active tab: a phase tab keeps tokens in
// that phase, the watchlist tab keeps watchlisted tokens of any phase.
func filterTab(rows []domain.Row, q domain.QueryState) []domain.Row {
	out := rows[:0]
	for _, r := range rows {
		if q.ActiveTab == domain.TabWatchlist {
			if q.WatchlistIDs[r.Token.ID] {
				out = append(out, r)
			}
			continue
		}
		if r.Token.Phase == domain.Phase(q.ActiveTab) {
			out = append(out, r)
		}
	}
	return out
}

// sortRows orders rows by the active key and direction in place. The sort is
// stable, so rows with equal keys keep their prior relative order under both
// directions.
func sortRows(rows []domain.Row, key domain.SortKey, dir domain.SortDirection) {
	value := sortValue(key)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := value(rows[i]), value(rows[j])
		if dir == domain.SortAsc {
			return a < b
		}
		return a > b
	})
}

func sortValue(key domain.SortKey) func(domain.Row) float64 {
	switch key {
	case domain.SortByLiquidity:
		return func(r domain.Row) float64 { return r.Token.Liquidity }
	case domain.SortByVolume24h:
		return func(r domain.Row) float64 { return r.Token.Volume24h }
	case domain.SortByTxns:
		return func(r domain.Row) float64 { return float64(r.Token.Txns.Total()) }
	case domain.SortByScore:
		return func(r domain.Row) float64 { return r.Token.Score }
	default:
		return func(r domain.Row) float64 { return r.Token.MarketCap }
	}
}

func paginate(rows []domain.Row, page, size int) Page {
	totalPages := (len(rows) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return Page{
		Items:      append([]domain.Row(nil), rows[start:end]...),
		TotalCount: len(rows),
		TotalPages: totalPages,
		Page:       page,
	}
}
