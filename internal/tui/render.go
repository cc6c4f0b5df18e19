package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	tabActiveStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"}).
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})
	rowStyle         = lipgloss.NewStyle()
	rowSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "212"}).
				Bold(true)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var tabs = []struct {
	tab   domain.Tab
	label string
}{
	{domain.TabNew, "1:New"},
	{domain.TabFinal, "2:Final"},
	{domain.TabMigrated, "3:Migrated"},
	{domain.TabWatchlist, "4:Watchlist"},
}

var sortLabels = map[domain.SortKey]string{
	domain.SortByMarketCap: "MCap",
	domain.SortByLiquidity: "Liq",
	domain.SortByVolume24h: "Vol",
	domain.SortByTxns:      "Txns",
	domain.SortByScore:     "Score",
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteByte('\n')

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteByte('\n')
	}

	b.WriteString(m.renderTable())
	b.WriteByte('\n')
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.label
		if t.tab == domain.TabWatchlist {
			label = fmt.Sprintf("%s(%d)", label, len(m.current.Query.WatchlistIDs))
		}
		if t.tab == m.current.Query.ActiveTab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderTable() string {
	q := m.current.Query

	header := fmt.Sprintf("  %-20s %-8s %12s %8s %12s %12s %12s %8s %6s",
		"Name", "Symbol", "Price", "24h%",
		m.sortHeader(domain.SortByMarketCap),
		m.sortHeader(domain.SortByLiquidity),
		m.sortHeader(domain.SortByVolume24h),
		m.sortHeader(domain.SortByTxns),
		m.sortHeader(domain.SortByScore),
	)

	lines := []string{headerStyle.Render(header)}

	if len(m.current.Page.Items) == 0 {
		empty := "  no tokens"
		if q.ActiveTab == domain.TabWatchlist && len(q.WatchlistIDs) == 0 {
			empty = "  watchlist is empty — press w on a row to add"
		} else if q.SearchText != "" {
			empty = fmt.Sprintf("  nothing matches %q", q.SearchText)
		}
		lines = append(lines, footerStyle.Render(empty))
	}

	for i, r := range m.current.Page.Items {
		line := m.renderRow(r, q)
		if i == m.cursor {
			line = rowSelectedStyle.Render("> " + line)
		} else {
			line = rowStyle.Render("  " + line)
		}
		lines = append(lines, line)

		if q.Density == domain.DensityComfortable {
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r domain.Row, q domain.QueryState) string {
	name := r.Token.Name
	if len(name) > 20 {
		name = name[:19] + "…"
	}

	marker := " "
	if q.WatchlistIDs[r.Token.ID] {
		marker = "★"
	}

	arrow := " "
	switch r.Runtime.Direction {
	case domain.DirectionUp:
		arrow = upStyle.Render("▲")
	case domain.DirectionDown:
		arrow = downStyle.Render("▼")
	}

	return fmt.Sprintf("%s%-20s %-8s %11s%s %7.2f%% %12s %12s %12s %8d %6.0f",
		marker, name, r.Token.Symbol,
		formatPrice(r.Token.PriceUsd), arrow,
		r.Token.PriceChangePct,
		formatCompact(r.Token.MarketCap),
		formatCompact(r.Token.Liquidity),
		formatCompact(r.Token.Volume24h),
		r.Token.Txns.Total(),
		r.Token.Score,
	)
}

// sortHeader decorates the active sort column with its direction.
func (m *Model) sortHeader(key domain.SortKey) string {
	label := sortLabels[key]
	if m.current.Query.SortKey != key {
		return label
	}
	if m.current.Query.SortDirection == domain.SortAsc {
		return label + "↑"
	}
	return label + "↓"
}

func (m *Model) renderFooter() string {
	p := m.current.Page

	freshness := "no data yet"
	if m.current.HasUpdate {
		freshness = fmt.Sprintf("updated %ds ago", m.current.SecondsSinceUpdate)
	}

	live := "live"
	if !m.current.Query.LiveUpdates {
		live = "paused"
	}

	parts := []string{
		fmt.Sprintf("page %d/%d (%d tokens)", p.Page, p.TotalPages, p.TotalCount),
		freshness,
		live,
	}
	if m.current.UsingFallback {
		parts = append(parts, noticeStyle.Render("static fallback data"))
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}

	footer := footerStyle.Render(strings.Join(parts, "  ·  "))
	help := footerStyle.Render("1-4 tabs · / search · m/l/v/t/s sort · n/p page · w watch · space pause · d density · r refetch · q quit")
	return footer + "\n" + help
}

// formatPrice renders a price with precision suited to its magnitude.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("$%.2f", p)
	case p >= 1:
		return fmt.Sprintf("$%.4f", p)
	default:
		return fmt.Sprintf("$%.6f", p)
	}
}

// formatCompact renders a dollar amount with K/M/B suffixes.
func formatCompact(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
