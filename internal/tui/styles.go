package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/aoss-console/internal/workflows"
)

// Styles holds every style the console renders with.
type Styles struct {
	Title      lipgloss.Style
	Crumbs     lipgloss.Style
	Muted      lipgloss.Style
	Label      lipgloss.Style
	Selected   lipgloss.Style
	Section    lipgloss.Style
	Help       lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Tile       lipgloss.Style
	TileActive lipgloss.Style
	Focus      lipgloss.Style
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	Card       lipgloss.Style
	Pin        lipgloss.Style
	PinActive  lipgloss.Style
	Tooltip    lipgloss.Style
	Status     map[workflows.Status]lipgloss.Style
}

type palette struct {
	accent, text, muted, border, selected, success, warn, danger, panelBG lipgloss.Color
}

var palettes = map[string]palette{
	"default": {accent: "86", text: "252", muted: "241", border: "240", selected: "229", success: "42", warn: "214", danger: "196", panelBG: "235"},
	"dark":    {accent: "39", text: "255", muted: "244", border: "238", selected: "228", success: "35", warn: "220", danger: "203", panelBG: "234"},
	"light":   {accent: "25", text: "235", muted: "245", border: "250", selected: "27", success: "28", warn: "130", danger: "160", panelBG: "255"},
}

// NewStyles builds the styles for a theme. Unknown themes use "default".
func NewStyles(theme string) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes["default"]
	}
	return Styles{
		Title:      lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Crumbs:     lipgloss.NewStyle().Foreground(p.muted),
		Muted:      lipgloss.NewStyle().Foreground(p.muted),
		Label:      lipgloss.NewStyle().Foreground(p.text).Bold(true),
		Selected:   lipgloss.NewStyle().Foreground(p.selected).Bold(true),
		Section:    lipgloss.NewStyle().Foreground(p.accent).Bold(true).MarginTop(1),
		Help:       lipgloss.NewStyle().Foreground(p.muted),
		Error:      lipgloss.NewStyle().Foreground(p.danger),
		Success:    lipgloss.NewStyle().Foreground(p.success),
		Tile:       lipgloss.NewStyle().Foreground(p.text).Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		TileActive: lipgloss.NewStyle().Foreground(p.selected).Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1).Bold(true),
		Focus:      lipgloss.NewStyle().Foreground(p.accent),
		Panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Card:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.accent).Padding(0, 1),
		Pin:        lipgloss.NewStyle().Foreground(p.warn).Bold(true),
		PinActive:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		Tooltip:    lipgloss.NewStyle().Background(p.panelBG).Foreground(p.text).Padding(0, 1),
		Status: map[workflows.Status]lipgloss.Style{
			workflows.Pending:    lipgloss.NewStyle().Foreground(p.muted),
			workflows.InProgress: lipgloss.NewStyle().Foreground(p.warn),
			workflows.Success:    lipgloss.NewStyle().Foreground(p.success),
			workflows.Error:      lipgloss.NewStyle().Foreground(p.danger),
		},
	}
}
