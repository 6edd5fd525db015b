package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazuruo/aoss-console/internal/router"
)

// screen is one console page. The app owns exactly one at a time and closes
// it on navigation.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View(width, height int) string
	Route() router.Route
	// Capturing reports whether a text field has focus, in which case
	// printable keys belong to the screen.
	Capturing() bool
	// Close releases timers and goroutines owned by the screen.
	Close()
}

// navigateMsg asks the app to switch screens.
type navigateMsg struct {
	route router.Route
}

func navigate(r router.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: r} }
}

// noClose is embedded by screens without background work.
type noClose struct{}

func (noClose) Close() {}
