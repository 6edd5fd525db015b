// Package tui is the interactive console: list, detail and create screens
// behind a hash router, with the comments overlay drawn on top.
package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/comments"
	"github.com/chazuruo/aoss-console/internal/config"
	"github.com/chazuruo/aoss-console/internal/kv"
	"github.com/chazuruo/aoss-console/internal/router"
	"github.com/chazuruo/aoss-console/internal/runner"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// Deps are the services the console runs against.
type Deps struct {
	Config     *config.Config
	Catalog    *catalog.Catalog
	Blueprints *workflows.Set
	Local      kv.Store
	// Remote is the shared comment store. Nil keeps comments local.
	Remote comments.Remote
	Logger *slog.Logger

	ctx context.Context
}

func (d *Deps) context() context.Context {
	if d.ctx == nil {
		return context.Background()
	}
	return d.ctx
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Deps) pageSize() int {
	if d.Config == nil || d.Config.Catalog.PageSize <= 0 {
		return catalog.DefaultPageSize
	}
	return d.Config.Catalog.PageSize
}

func (d *Deps) newOrchestrator() *runner.Orchestrator {
	opts := []runner.Option{runner.WithLogger(d.logger())}
	if d.Config != nil {
		p := d.Config.Provisioning
		opts = append(opts,
			runner.WithStepDelay(p.StepDelay.Duration),
			runner.WithCompletionDelay(p.CompletionDelay.Duration),
			runner.WithFailurePolicy(runner.PolicyFor(p.FailFirstAttempt, p.FailStep)),
		)
	}
	return runner.New(opts...)
}

func (d *Deps) newController(screen string) *comments.Controller {
	opts := []comments.Option{comments.WithLogger(d.logger())}
	if d.Config != nil {
		opts = append(opts, comments.WithAuthor(d.Config.Comments.Author))
	}
	return comments.NewController(screen, d.Remote, d.Local, opts...)
}

// App is the root bubbletea model.
type App struct {
	deps     *Deps
	st       Styles
	keys     keyMap
	help     help.Model
	screen   screen
	overlay  *overlay
	width    int
	height   int
	showHelp bool
}

// New returns the console opened at route.
func New(deps *Deps, route router.Route) *App {
	theme := "default"
	if deps.Config != nil {
		theme = deps.Config.TUI.Theme
	}
	a := &App{
		deps: deps,
		st:   NewStyles(theme),
		keys: defaultKeys(),
		help: help.New(),
	}
	a.open(route)
	return a
}

// Route returns the route of the current screen.
func (a *App) Route() router.Route { return a.screen.Route() }

// Close releases the current screen.
func (a *App) Close() {
	if a.screen != nil {
		a.screen.Close()
	}
}

// open replaces the current screen and its comments scope.
func (a *App) open(r router.Route) tea.Cmd {
	if a.screen != nil {
		a.screen.Close()
	}
	a.screen = a.build(r)

	var interval time.Duration
	var mouse bool
	if c := a.deps.Config; c != nil {
		interval, mouse = c.Comments.RefreshInterval.Duration, c.TUI.Mouse
	}
	ctrl := a.deps.newController(r.View.ScreenName())
	a.overlay = newOverlay(a.deps.context(), ctrl, a.st, a.keys, interval, mouse)
	a.deps.logger().Debug("navigated", "route", r.Hash(), "screen", ctrl.Screen())
	return tea.Batch(a.screen.Init(), a.overlay.Init())
}

func (a *App) build(r router.Route) screen {
	d := a.deps
	switch r.View {
	case router.CollectionGroups:
		return newGroupsScreen(d, a.st, a.keys)
	case router.CollectionDetails:
		return newCollectionDetails(d, r, a.st, a.keys)
	case router.CollectionGroupDetails:
		return newGroupDetails(d, r, a.st, a.keys)
	case router.IndexDetails:
		return newIndexDetails(d, r, a.st, a.keys)
	case router.CreateCollection:
		return newCreateScreen(d, r, a.st, a.keys, collectionForm(d))
	case router.CreateCollectionV1:
		return newCreateScreen(d, r, a.st, a.keys, collectionV1Form(d))
	case router.CreateCollectionGroup:
		return newCreateScreen(d, r, a.st, a.keys, groupForm(d))
	case router.CreateIndex:
		return newCreateScreen(d, r, a.st, a.keys, indexForm(d, r.Collection))
	default:
		return newCollectionsScreen(d, a.st, a.keys)
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.screen.Init(), a.overlay.Init())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil

	case navigateMsg:
		return a, a.open(msg.route)

	case commentsChangedMsg, refreshTickMsg:
		return a, a.overlay.Message(msg)

	case tea.MouseMsg:
		if ok, cmd := a.overlay.Mouse(msg, a.width); ok {
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.Close()
			return a, tea.Quit
		}
		if ok, cmd := a.overlay.Key(msg, a.width, a.height); ok {
			return a, cmd
		}
		if !a.screen.Capturing() {
			switch {
			case key.Matches(msg, a.keys.Help):
				a.showHelp = !a.showHelp
				return a, nil
			case key.Matches(msg, a.keys.Groups):
				return a, navigate(router.Route{View: router.CollectionGroups})
			case key.Matches(msg, a.keys.Collection):
				return a, navigate(router.Route{View: router.Collections})
			case key.Matches(msg, a.keys.Back):
				if up := a.screen.Route().Up(); up != a.screen.Route() {
					return a, navigate(up)
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	width, height := a.width, a.height
	if width == 0 {
		width, height = 120, 40
	}

	r := a.screen.Route()
	crumbs := a.st.Crumbs.Render(r.Trail())
	a.help.ShowAll = a.showHelp
	footer := a.st.Help.Render(a.help.View(a.keys))

	bodyHeight := height - lipgloss.Height(crumbs) - lipgloss.Height(footer) - 2
	body := a.screen.View(width, max(bodyHeight, 1))
	body = strings.Join(canvas(body, width, max(bodyHeight, 1)), "\n")

	frame := lipgloss.JoinVertical(lipgloss.Left, crumbs, "", body, "", footer)
	return a.overlay.Decorate(frame, width, height)
}

// Run starts the console at route and blocks until it exits or ctx is done.
func Run(ctx context.Context, deps *Deps, route router.Route) error {
	deps.ctx = ctx
	app := New(deps, route)
	defer app.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if deps.Config != nil && deps.Config.TUI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	_, err := tea.NewProgram(app, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
