package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	Search    key.Binding
	Escape    key.Binding
	TabNew    key.Binding
	TabFinal  key.Binding
	TabMigr   key.Binding
	TabWatch  key.Binding
	SortCap   key.Binding
	SortLiq   key.Binding
	SortVol   key.Binding
	SortTxns  key.Binding
	SortScore key.Binding
	Watch     key.Binding
	Live      key.Binding
	Density   key.Binding
	Refetch   key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextPage:  key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
	PrevPage:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev page")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
	TabNew:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "new")),
	TabFinal:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "final")),
	TabMigr:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "migrated")),
	TabWatch:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "watchlist")),
	SortCap:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort cap")),
	SortLiq:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sort liq")),
	SortVol:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "sort vol")),
	SortTxns:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort txns")),
	SortScore: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort score")),
	Watch:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch")),
	Live:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	Density:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "density")),
	Refetch:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refetch")),
}
