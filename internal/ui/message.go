package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundslate/internal/stats"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProfileLoaded MsgKind = iota
	MsgListLoaded
	MsgExported
)

type exported struct {
	path string
	err  error
}

// loadedMsg wraps a loader result as [MsgProfileLoaded] or [MsgListLoaded].
func loadedMsg(res stats.Result) Msg {
	kind := MsgListLoaded
	if res.Key.Resource == stats.ProfileResource {
		kind = MsgProfileLoaded
	}
	return Msg{kind: kind, data: res}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(path string, err error) Msg {
	return Msg{kind: MsgExported, data: exported{path, err}}
}
