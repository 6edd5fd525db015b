package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Back       key.Binding
	Help       key.Binding
	Comments   key.Binding
	PinMode    key.Binding
	TogglePins key.Binding
	Groups     key.Binding
	Collection key.Binding
	Create     key.Binding
	CreateV1   key.Binding
	Open       key.Binding
	Filter     key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Sort       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	Retry      key.Binding
	Delete     key.Binding
	Edit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Comments:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "comments")),
		PinMode:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "place pin")),
		TogglePins: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "show/hide pins")),
		Groups:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "collection groups")),
		Collection: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "collections")),
		Create:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "create")),
		CreateV1:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "create (v1)")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		NextPage:   key.NewBinding(key.WithKeys("pgdown", "]"), key.WithHelp("]", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("pgup", "["), key.WithHelp("[", "prev page")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous option")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next option")),
		NextField:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Retry:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
		Delete:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Edit:       key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Comments, k.PinMode, k.TogglePins, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Collection, k.Groups, k.Create, k.CreateV1, k.Open, k.Back},
		{k.Filter, k.Sort, k.NextPage, k.PrevPage},
		{k.NextField, k.PrevField, k.Left, k.Right, k.Submit, k.Retry},
		{k.Comments, k.PinMode, k.TogglePins, k.Edit, k.Delete, k.Quit},
	}
}
