package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/router"
)

// detailScreen shows one resource plus an optional list of children that can
// be opened.
type detailScreen struct {
	noClose
	route    router.Route
	st       Styles
	keys     keyMap
	title    string
	fields   [][2]string
	children []child
	listName string
	create   *router.Route
	cursor   int
	err      error
}

type child struct {
	label string
	route router.Route
}

func newCollectionDetails(d *Deps, r router.Route, st Styles, keys keyMap) screen {
	s := &detailScreen{route: r, st: st, keys: keys, title: r.Collection, listName: "Indexes"}
	col, err := d.Catalog.Collection(r.Collection)
	if err != nil {
		s.err = err
		return s
	}
	s.fields = [][2]string{
		{"Status", col.Status},
		{"Description", col.DescriptionText()},
		{"Collection type", col.Type.DisplayName()},
		{"Serverless version", col.Version.DisplayName()},
		{"Collection group", col.GroupText()},
		{"Dashboards", col.Dashboard()},
		{"Creation date", catalog.FormatDate(col.Created)},
	}
	for _, idx := range d.Catalog.Indexes(col.Name) {
		s.children = append(s.children, child{
			label: fmt.Sprintf("%-24s %s", idx.Name, idx.DataRetention),
			route: router.Route{View: router.IndexDetails, Collection: col.Name, Index: idx.Name},
		})
	}
	create := router.Route{View: router.CreateIndex, Collection: col.Name}
	s.create = &create
	return s
}

func newGroupDetails(d *Deps, r router.Route, st Styles, keys keyMap) screen {
	s := &detailScreen{route: r, st: st, keys: keys, title: r.Group, listName: "Collections"}
	g, err := d.Catalog.Group(r.Group)
	if err != nil {
		s.err = err
		return s
	}
	s.fields = [][2]string{
		{"Description", dashText(g.Description)},
		{"Serverless version", g.Version.DisplayName()},
		{"Indexing capacity", g.IndexingText()},
		{"Search capacity", g.SearchText()},
		{"Creation date", catalog.FormatDate(g.Created)},
	}
	for _, col := range d.Catalog.Collections() {
		if col.Group != g.Name {
			continue
		}
		s.children = append(s.children, child{
			label: fmt.Sprintf("%-32s %s", col.Name, col.Type.DisplayName()),
			route: router.Route{View: router.CollectionDetails, Collection: col.Name},
		})
	}
	return s
}

func newIndexDetails(d *Deps, r router.Route, st Styles, keys keyMap) screen {
	s := &detailScreen{route: r, st: st, keys: keys, title: r.Index}
	idx, err := d.Catalog.Index(r.Collection, r.Index)
	if err != nil {
		s.err = err
		return s
	}
	s.fields = [][2]string{
		{"Collection", idx.Collection},
		{"Data retention", idx.DataRetention},
		{"Hot storage retention", idx.HotStorageRetention},
		{"Documents", fmt.Sprint(idx.Documents)},
		{"Size", fmt.Sprintf("%d bytes", idx.SizeBytes)},
		{"Creation date", catalog.FormatDate(idx.Created)},
	}
	return s
}

func dashText(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (s *detailScreen) Init() tea.Cmd { return nil }

func (s *detailScreen) Route() router.Route { return s.route }

func (s *detailScreen) Capturing() bool { return false }

func (s *detailScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(km, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(km, s.keys.Down):
		if s.cursor < len(s.children)-1 {
			s.cursor++
		}
	case key.Matches(km, s.keys.Open):
		if s.cursor < len(s.children) {
			return s, navigate(s.children[s.cursor].route)
		}
	case key.Matches(km, s.keys.Create):
		if s.create != nil {
			return s, navigate(*s.create)
		}
	}
	return s, nil
}

func (s *detailScreen) View(width, _ int) string {
	var b strings.Builder
	b.WriteString(s.st.Title.Render(s.title))
	b.WriteString("\n\n")
	if s.err != nil {
		b.WriteString(s.st.Error.Render(s.err.Error()))
		return b.String()
	}

	labelWidth := 0
	for _, f := range s.fields {
		labelWidth = max(labelWidth, lipgloss.Width(f[0]))
	}
	for _, f := range s.fields {
		b.WriteString(s.st.Label.Width(labelWidth + 2).Render(f[0]))
		b.WriteString(f[1])
		b.WriteString("\n")
	}

	if s.listName == "" {
		return b.String()
	}
	b.WriteString(s.st.Section.Render(fmt.Sprintf("%s (%d)", s.listName, len(s.children))))
	b.WriteString("\n")
	if len(s.children) == 0 {
		b.WriteString(s.st.Muted.Render("No " + strings.ToLower(s.listName) + "."))
		b.WriteString("\n")
	}
	for i, c := range s.children {
		line := "  " + c.label
		if i == s.cursor {
			line = s.st.Selected.Render("> " + c.label)
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line))
		b.WriteString("\n")
	}
	if s.create != nil {
		b.WriteString("\n")
		b.WriteString(s.st.Muted.Render("n to create an index"))
	}
	return b.String()
}
