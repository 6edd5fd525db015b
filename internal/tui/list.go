package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/router"
)

// listSource adapts a catalog list to the shared list screen.
type listSource[T catalog.Searchable] struct {
	heading string
	columns []table.Column
	items   func() []T
	row     func(T) table.Row
	open    func(T) router.Route
	create  router.Route
}

// listScreen is a filterable, sortable, paged table.
type listScreen[T catalog.Searchable] struct {
	noClose
	route  router.Route
	src    listSource[T]
	st     Styles
	keys   keyMap
	query  catalog.Query
	page   catalog.Page[T]
	table  table.Model
	filter textinput.Model
	pager  paginator.Model
}

func newListScreen[T catalog.Searchable](route router.Route, src listSource[T], st Styles, keys keyMap, pageSize int) *listScreen[T] {
	fi := textinput.New()
	fi.Placeholder = "Find " + strings.ToLower(src.heading)
	fi.Prompt = "/ "

	pg := paginator.New()
	pg.Type = paginator.Arabic

	s := &listScreen[T]{
		route:  route,
		src:    src,
		st:     st,
		keys:   keys,
		query:  catalog.Query{Page: 1, PageSize: pageSize},
		filter: fi,
		pager:  pg,
		table:  table.New(table.WithColumns(src.columns), table.WithFocused(true)),
	}
	s.refresh()
	return s
}

func newCollectionsScreen(d *Deps, st Styles, keys keyMap) screen {
	return newListScreen(router.Route{View: router.Collections}, listSource[catalog.Collection]{
		heading: "Collections",
		columns: []table.Column{
			{Title: "Collection name", Width: 30},
			{Title: "Dashboards", Width: 14},
			{Title: "Status", Width: 8},
			{Title: "Collection type", Width: 15},
			{Title: "Serverless version", Width: 18},
			{Title: "Collection group", Width: 16},
			{Title: "Creation date", Width: 36},
		},
		items: d.Catalog.Collections,
		row: func(c catalog.Collection) table.Row {
			return table.Row{c.Name, c.Dashboard(), c.Status, c.Type.DisplayName(), c.Version.DisplayName(), c.GroupText(), catalog.FormatDate(c.Created)}
		},
		open:   func(c catalog.Collection) router.Route { return router.Route{View: router.CollectionDetails, Collection: c.Name} },
		create: router.Route{View: router.CreateCollection},
	}, st, keys, d.pageSize())
}

func newGroupsScreen(d *Deps, st Styles, keys keyMap) screen {
	return newListScreen(router.Route{View: router.CollectionGroups}, listSource[catalog.Group]{
		heading: "Collection groups",
		columns: []table.Column{
			{Title: "Group name", Width: 24},
			{Title: "Serverless version", Width: 18},
			{Title: "Indexing capacity", Width: 18},
			{Title: "Search capacity", Width: 18},
			{Title: "Collections", Width: 11},
		},
		items: d.Catalog.Groups,
		row: func(g catalog.Group) table.Row {
			return table.Row{g.Name, g.Version.DisplayName(), g.IndexingText(), g.SearchText(), fmt.Sprint(d.Catalog.GroupCollections(g.Name))}
		},
		open:   func(g catalog.Group) router.Route { return router.Route{View: router.CollectionGroupDetails, Group: g.Name} },
		create: router.Route{View: router.CreateCollectionGroup},
	}, st, keys, d.pageSize())
}

func (s *listScreen[T]) refresh() {
	s.page = catalog.Run(s.src.items(), s.query)
	s.query.Page = s.page.CurrentPage
	rows := make([]table.Row, len(s.page.Items))
	for i, it := range s.page.Items {
		rows[i] = s.src.row(it)
	}
	s.table.SetRows(rows)
	if s.table.Cursor() >= len(rows) {
		s.table.SetCursor(max(len(rows)-1, 0))
	}
	s.pager.PerPage = 1
	s.pager.SetTotalPages(max(s.page.PagesCount, 1))
	s.pager.Page = s.page.CurrentPage - 1
}

func (s *listScreen[T]) Init() tea.Cmd { return nil }

func (s *listScreen[T]) Route() router.Route { return s.route }

func (s *listScreen[T]) Capturing() bool { return s.filter.Focused() }

func (s *listScreen[T]) Update(msg tea.Msg) (screen, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if s.filter.Focused() {
		switch km.String() {
		case "enter", "esc":
			s.filter.Blur()
			s.table.Focus()
			return s, nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(km)
		s.query.SetFilter(s.filter.Value())
		s.refresh()
		return s, cmd
	}

	switch {
	case key.Matches(km, s.keys.Filter):
		s.table.Blur()
		return s, s.filter.Focus()
	case key.Matches(km, s.keys.NextPage):
		s.query.Page++
		s.refresh()
	case key.Matches(km, s.keys.PrevPage):
		s.query.Page = max(s.query.Page-1, 1)
		s.refresh()
	case key.Matches(km, s.keys.Sort):
		s.cycleSort()
		s.refresh()
	case key.Matches(km, s.keys.Create):
		return s, navigate(s.src.create)
	case key.Matches(km, s.keys.CreateV1) && s.route.View == router.Collections:
		return s, navigate(router.Route{View: router.CreateCollectionV1})
	case key.Matches(km, s.keys.Open):
		if i := s.table.Cursor(); i >= 0 && i < len(s.page.Items) {
			return s, navigate(s.src.open(s.page.Items[i]))
		}
	default:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(km)
		return s, cmd
	}
	return s, nil
}

// cycleSort steps through seed order, name, then newest first.
func (s *listScreen[T]) cycleSort() {
	switch {
	case s.query.SortField == "":
		s.query.SortField, s.query.Descending = catalog.SortName, false
	case s.query.SortField == catalog.SortName:
		s.query.SortField, s.query.Descending = catalog.SortCreated, true
	default:
		s.query.SortField, s.query.Descending = "", false
	}
}

func (s *listScreen[T]) View(width, height int) string {
	s.table.SetHeight(max(min(len(s.page.Items)+1, height-6), 3))
	s.table.SetWidth(width)

	counter := s.page.Counter()
	head := s.st.Title.Render(s.src.heading) + " " + s.st.Muted.Render(counter)

	var filterLine string
	if s.filter.Focused() || s.filter.Value() != "" {
		filterLine = s.filter.View()
		if s.filter.Value() != "" {
			filterLine += "  " + s.st.Muted.Render(s.page.CountText())
		}
	} else {
		filterLine = s.st.Muted.Render("/ to filter")
	}

	sortText := "seed order"
	if s.query.SortField != "" {
		sortText = s.query.SortField
		if s.query.Descending {
			sortText += " (desc)"
		}
	}
	footer := s.st.Muted.Render(fmt.Sprintf("Page %s  sort: %s", s.pager.View(), sortText))

	return lipgloss.JoinVertical(lipgloss.Left, head, filterLine, s.table.View(), footer)
}
