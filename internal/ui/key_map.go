package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	tab    key.Binding
	rng    key.Binding
	limit  key.Binding
	layout key.Binding
	export key.Binding
	logout key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tracks/artists")),
		rng:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		limit:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
		layout: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		logout: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.rng, k.limit, k.layout, k.export, k.logout, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.tab, k.rng, k.limit},
		{k.layout, k.export},
		{k.logout, k.quit},
	}
}
