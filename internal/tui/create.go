package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/forms"
	"github.com/chazuruo/aoss-console/internal/router"
	"github.com/chazuruo/aoss-console/internal/runner"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// createForm is what a create screen needs from one of the resource forms.
type createForm struct {
	fields     []field
	summary    func() []forms.Row
	validate   func() error
	steps      func() ([]string, error)
	resourceID func() string
	// commit records the resource the workflow reported as created and
	// returns the page to show.
	commit func(id string) (router.Route, error)
}

// Messages from an orchestrator carry their screen so stale ones are dropped
// after navigation.
type (
	snapshotMsg struct {
		owner *createScreen
		snap  runner.Snapshot
	}
	completedMsg struct {
		owner *createScreen
		id    string
	}
	failedMsg struct {
		owner *createScreen
		err   error
	}
)

// createScreen edits a form and provisions the resource through a runner
// Orchestrator owned by the screen.
type createScreen struct {
	route  router.Route
	st     Styles
	keys   keyMap
	form   createForm
	focus  int
	orch   *runner.Orchestrator
	ctx    context.Context
	snap   runner.Snapshot
	spin   spinner.Model
	events chan tea.Msg
	err    error
	// listening is set while a listen command is outstanding.
	listening bool
}

func newCreateScreen(d *Deps, r router.Route, st Styles, keys keyMap, form createForm) *createScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Status[workflows.InProgress]

	s := &createScreen{
		route:  r,
		st:     st,
		keys:   keys,
		form:   form,
		orch:   d.newOrchestrator(),
		ctx:    d.context(),
		spin:   sp,
		events: make(chan tea.Msg, 2),
	}
	s.focus = s.nextVisible(-1, 1)
	return s
}

func (s *createScreen) Init() tea.Cmd {
	if f := s.focused(); f != nil {
		return f.Focus()
	}
	return nil
}

func (s *createScreen) Route() router.Route { return s.route }

// Capturing is always true: letters are form input and esc cancels.
func (s *createScreen) Capturing() bool { return true }

// Close stops the workflow. Callbacks that fire later find nobody listening.
func (s *createScreen) Close() { s.orch.Close() }

func (s *createScreen) focused() field {
	if s.focus < 0 || s.focus >= len(s.form.fields) {
		return nil
	}
	return s.form.fields[s.focus]
}

// nextVisible finds the next visible field after from in direction dir,
// wrapping around. It returns -1 when nothing is visible.
func (s *createScreen) nextVisible(from, dir int) int {
	n := len(s.form.fields)
	for i := 1; i <= n; i++ {
		j := ((from+dir*i)%n + n) % n
		if s.form.fields[j].Visible() {
			return j
		}
	}
	return -1
}

func (s *createScreen) moveFocus(dir int) tea.Cmd {
	if f := s.focused(); f != nil {
		f.Blur()
	}
	s.focus = s.nextVisible(s.focus, dir)
	if f := s.focused(); f != nil {
		return f.Focus()
	}
	return nil
}

// listen waits for the next orchestrator snapshot or callback.
func (s *createScreen) listen() tea.Cmd {
	updates, events := s.orch.Updates(), s.events
	return func() tea.Msg {
		select {
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			return snapshotMsg{owner: s, snap: snap}
		case ev := <-events:
			return ev
		}
	}
}

// wait starts a listen unless one is already outstanding, so exactly one
// command reads the orchestrator at a time.
func (s *createScreen) wait() tea.Cmd {
	if s.listening {
		return nil
	}
	s.listening = true
	return s.listen()
}

// request validates the form as it stands and builds its workflow.
func (s *createScreen) request() (runner.Request, error) {
	if err := s.form.validate(); err != nil {
		return runner.Request{}, err
	}
	steps, err := s.form.steps()
	if err != nil {
		return runner.Request{}, err
	}
	return runner.Request{
		Steps:      steps,
		ResourceID: s.form.resourceID(),
		OnComplete: func(id string) { s.post(completedMsg{owner: s, id: id}) },
		OnError:    func(err error) { s.post(failedMsg{owner: s, err: err}) },
	}, nil
}

func (s *createScreen) submit() tea.Cmd {
	s.err = nil
	req, err := s.request()
	if err != nil {
		s.err = err
		return nil
	}
	if err := s.orch.Start(s.ctx, req); err != nil {
		s.err = err
		return nil
	}
	if f := s.focused(); f != nil {
		f.Blur()
	}
	s.snap = s.orch.Snapshot()
	return tea.Batch(s.wait(), s.spin.Tick)
}

// retry revalidates the form, which may have been edited since the failure,
// and reruns the workflow it now describes.
func (s *createScreen) retry() tea.Cmd {
	req, err := s.request()
	if err != nil {
		s.err = err
		return nil
	}
	if err := s.orch.RetryWith(req); err != nil {
		s.err = err
		return nil
	}
	s.err = nil
	s.snap = s.orch.Snapshot()
	return tea.Batch(s.wait(), s.spin.Tick)
}

// post hands a callback result to the UI without blocking the runner.
func (s *createScreen) post(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
	}
}

func (s *createScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.owner != s {
			return s, nil
		}
		s.listening = false
		s.snap = msg.snap
		return s, s.wait()

	case completedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.listening = false
		r, err := s.form.commit(msg.id)
		if err != nil {
			s.err = err
			return s, nil
		}
		return s, navigate(r)

	case failedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.listening = false
		s.err = msg.err
		if f := s.focused(); f != nil {
			return s, tea.Batch(f.Focus(), s.wait())
		}
		return s, s.wait()

	case spinner.TickMsg:
		if s.orch.State() != workflows.Running {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *createScreen) handleKey(km tea.KeyMsg) tea.Cmd {
	editable := s.orch.Editable()
	switch {
	case key.Matches(km, s.keys.Back):
		if s.orch.State() == workflows.Running {
			return nil
		}
		return navigate(s.route.Up())
	case key.Matches(km, s.keys.Submit):
		if s.orch.State() == workflows.Idle {
			return s.submit()
		}
		return nil
	case key.Matches(km, s.keys.Retry):
		if s.orch.State() == workflows.Failed {
			return s.retry()
		}
		return nil
	}
	if !editable {
		return nil
	}
	switch {
	case key.Matches(km, s.keys.NextField):
		return s.moveFocus(1)
	case key.Matches(km, s.keys.PrevField):
		return s.moveFocus(-1)
	}
	if f := s.focused(); f != nil {
		return f.Update(km)
	}
	return nil
}

func (s *createScreen) View(width, _ int) string {
	var b strings.Builder
	b.WriteString(s.st.Title.Render(s.route.View.Title()))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, f := range s.form.fields {
		if f.Visible() {
			labelWidth = max(labelWidth, lipgloss.Width(f.Label()))
		}
	}
	editable := s.orch.Editable()
	for i, f := range s.form.fields {
		if !f.Visible() {
			continue
		}
		focused := editable && i == s.focus
		label := s.st.Label.Width(labelWidth + 2).Render(f.Label())
		if focused {
			label = s.st.Focus.Width(labelWidth + 2).Render(f.Label())
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, f.View(s.st, focused)))
		b.WriteString("\n")
	}

	if s.form.summary != nil {
		if rows := s.form.summary(); len(rows) > 0 {
			b.WriteString(renderRows(s.st, rows, width))
		}
	}

	b.WriteString("\n")
	if steps := renderSteps(s.st, s.snap, s.spin); steps != "" {
		b.WriteString(steps)
		b.WriteString("\n")
	}
	// The step list already reports the failure itself.
	if s.err != nil && (s.snap.State != workflows.Failed || s.err != s.snap.Err) {
		b.WriteString(s.st.Error.Render(s.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(renderActions(s.st, s.orch.Actions()))
	return b.String()
}

// renderRows draws a settings summary as a three column table.
func renderRows(st Styles, rows []forms.Row, width int) string {
	confWidth := 0
	for _, r := range rows {
		w := lipgloss.Width(r.Configuration)
		if r.Indent {
			w += 2
		}
		confWidth = max(confWidth, w)
	}
	valueWidth := max(width-confWidth-16, 20)

	var b strings.Builder
	b.WriteString(st.Section.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(padRight("Configuration", confWidth+2) + padRight("Value", valueWidth+2) + "Editable after creation"))
	b.WriteString("\n")
	for _, r := range rows {
		conf := r.Configuration
		if r.Indent {
			conf = "  " + conf
		}
		style := st.Label
		if !r.Section {
			style = lipgloss.NewStyle()
		}
		value := ansi.Truncate(r.Value, valueWidth, "...")
		b.WriteString(style.Render(padRight(conf, confWidth+2)))
		b.WriteString(padRight(value, valueWidth+2))
		b.WriteString(r.EditableText())
		b.WriteString("\n")
	}
	return b.String()
}

func padRight(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// Form builders.

func collectionForm(d *Deps) createForm {
	f := forms.NewCollectionForm(d.Catalog.GroupPresets())
	easy, std := f.Easy(), f.Standard()
	isEasy := func() bool { return f.MethodKind() == forms.MethodEasy }
	isStd := func() bool { return !isEasy() }

	method := forms.NewSelection(forms.MethodEasy, forms.MethodOptions()...)

	groupOpts := []forms.Option[string]{{Value: "", Label: "New group " + std.Group.ResourceName()}}
	for _, p := range d.Catalog.GroupPresets() {
		groupOpts = append(groupOpts, forms.Option[string]{Value: p.Name, Label: p.Name})
	}
	newGroup := std.Group
	stdGroup := forms.NewSelection("", groupOpts...)

	policy := forms.NewSelection("existing",
		forms.Option[string]{Value: "existing", Label: "Existing " + std.DataAccess.ResourceName()},
		forms.Option[string]{Value: "new", Label: "New policy " + forms.DefaultPolicyName},
	)
	existingPolicy := std.DataAccess

	enc := forms.NewSelection("aws",
		forms.Option[string]{Value: "aws", Label: "AWS owned key"},
		forms.Option[string]{Value: "cmk", Label: "Customer managed key"},
	)
	kmsARN := ""

	fields := []field{
		selectField("Creation method", &method, func(k forms.MethodKind) { _ = f.SetMethod(k) }),
		newTextField("Collection name", "", forms.DefaultCollectionName, func(s string) { f.Name = s }),
		newTextField("Description", "", "optional", func(s string) { f.Description = s }),
		selectField("Collection type", &f.Type, nil),
		selectField("Collection group", &easy.Group, nil).when(isEasy),
		selectField("Collection group", &stdGroup, func(name string) {
			if name == "" {
				std.Group = newGroup
				return
			}
			std.Group = forms.Existing{Name: name}
		}).when(isStd),
		selectField("Encryption", &enc, func(v string) {
			if v == "cmk" {
				std.Encryption = forms.CustomerKey{ARN: kmsARN}
				return
			}
			std.Encryption = forms.AWSOwnedKey{}
		}).when(isStd),
		newTextField("KMS key ARN", "", "arn:aws:kms:...", func(s string) {
			kmsARN = s
			if _, ok := std.Encryption.(forms.CustomerKey); ok {
				std.Encryption = forms.CustomerKey{ARN: s}
			}
		}).when(func() bool { return isStd() && enc.Selected() == "cmk" }),
		selectField("Network access", &std.Network.Type, nil).when(isStd),
		newTextField("VPC endpoints", "", "vpce-..., comma separated", func(s string) {
			std.Network.VPCEndpoints = splitList(s)
		}).when(func() bool { return isStd() && std.Network.Type.Selected() == forms.AccessVPC }),
		selectField("Data access policy", &policy, func(v string) {
			if v == "new" {
				std.DataAccess = forms.New{Name: forms.DefaultPolicyName}
				return
			}
			std.DataAccess = existingPolicy
		}).when(isStd),
	}

	return createForm{
		fields: fields,
		summary: func() []forms.Row {
			if isEasy() {
				return easy.DefaultSettings()
			}
			return nil
		},
		validate: func() error {
			if err := f.Validate(); err != nil {
				return err
			}
			return d.Catalog.CollectionAvailable(f.ResourceID())
		},
		steps:      func() ([]string, error) { return f.Steps(d.Blueprints) },
		resourceID: f.ResourceID,
		commit: func(id string) (router.Route, error) {
			if ng, ok := newCollectionGroup(f); ok && d.Catalog.GroupAvailable(ng.Name) == nil {
				if err := d.Catalog.AddGroup(catalog.Group{Name: ng.Name, Version: forms.V2, Capacity: ng.Capacity}); err != nil {
					return router.Route{}, err
				}
			}
			col := catalog.CollectionFromForm(f)
			col.Name = id
			return router.Route{View: router.CollectionDetails, Collection: col.Name}, d.Catalog.AddCollection(col)
		},
	}
}

// newCollectionGroup returns the group a standard create makes alongside the
// collection, if any. The default shares its name with a seeded group, which
// the collection then joins.
func newCollectionGroup(f *forms.CollectionForm) (forms.NewGroup, bool) {
	m, ok := f.Method.(*forms.StandardCreate)
	if !ok {
		return forms.NewGroup{}, false
	}
	ng, ok := m.Group.(forms.NewGroup)
	return ng, ok
}

func collectionV1Form(d *Deps) createForm {
	f := forms.NewCollectionV1Form()
	redundancy := forms.NewSelection(true,
		forms.Option[bool]{Value: true, Label: "Enable redundancy (active replicas)"},
		forms.Option[bool]{Value: false, Label: "Disable redundancy"},
	)
	return createForm{
		fields: []field{
			newTextField("Collection name", "", forms.DefaultCollectionV1Name, func(s string) { f.Name = s }),
			newTextField("Description", "", "optional", func(s string) { f.Description = s }),
			selectField("Collection type", &f.Type, nil),
			selectField("Deployment type", &redundancy, func(v bool) { f.Redundancy = v }),
			selectField("Security", &f.Security, nil),
		},
		validate: func() error {
			if err := f.Validate(); err != nil {
				return err
			}
			return d.Catalog.CollectionAvailable(f.ResourceID())
		},
		steps:      func() ([]string, error) { return f.Steps(d.Blueprints) },
		resourceID: f.ResourceID,
		commit: func(id string) (router.Route, error) {
			col := catalog.CollectionFromV1Form(f)
			col.Name = id
			return router.Route{View: router.CollectionDetails, Collection: col.Name}, d.Catalog.AddCollection(col)
		},
	}
}

func groupForm(d *Deps) createForm {
	f := forms.NewCollectionGroupForm()
	opts := forms.GroupCapacityOptions
	return createForm{
		fields: []field{
			newTextField("Collection group name", "", forms.DefaultGroupName, func(s string) { f.Name = s }),
			newTextField("Description", "", "optional", func(s string) { f.Description = s }),
			selectField("Serverless version", &f.Version, nil),
			selectField("Deployment type", &f.Deployment, nil).when(func() bool { return f.Version.Selected() == forms.V1 }),
			capacityField("Minimum indexing", opts, true, &f.Capacity.MinIndexing),
			capacityField("Maximum indexing", opts, false, &f.Capacity.MaxIndexing),
			capacityField("Minimum search", opts, true, &f.Capacity.MinSearch),
			capacityField("Maximum search", opts, false, &f.Capacity.MaxSearch),
		},
		summary: f.Summary,
		validate: func() error {
			if err := f.Validate(); err != nil {
				return err
			}
			return d.Catalog.GroupAvailable(f.ResourceID())
		},
		steps:      func() ([]string, error) { return f.Steps(d.Blueprints) },
		resourceID: f.ResourceID,
		commit: func(id string) (router.Route, error) {
			g := catalog.GroupFromForm(f)
			g.Name = id
			return router.Route{View: router.CollectionGroupDetails, Group: g.Name}, d.Catalog.AddGroup(g)
		},
	}
}

func indexForm(d *Deps, collection string) createForm {
	f := forms.NewIndexForm(collection)
	custom := func() bool { return f.Lifecycle.Selected() == forms.CustomRetention }
	unitOpts := []forms.Option[forms.Unit]{{Value: forms.Hours, Label: "hours"}, {Value: forms.Days, Label: "days"}}
	retentionUnit := forms.NewSelection(f.Retention.Unit, unitOpts...)
	hotUnit := forms.NewSelection(f.HotStorage.Unit, unitOpts...)
	return createForm{
		fields: []field{
			newTextField("Index name", "", forms.DefaultIndexName, func(s string) { f.Name = s }),
			selectField("Data lifecycle", &f.Lifecycle, nil),
			newIntField("Retention period", f.Retention.Value, func(n int) { f.Retention.Value = n }).when(custom),
			selectField("Retention unit", &retentionUnit, func(u forms.Unit) { f.Retention.Unit = u }).when(custom),
			newIntField("Hot storage", f.HotStorage.Value, func(n int) { f.HotStorage.Value = n }),
			selectField("Hot storage unit", &hotUnit, func(u forms.Unit) { f.HotStorage.Unit = u }),
		},
		validate: func() error {
			if err := f.Validate(); err != nil {
				return err
			}
			return d.Catalog.IndexAvailable(f.Collection, f.ResourceID())
		},
		steps:      func() ([]string, error) { return f.Steps(d.Blueprints) },
		resourceID: f.ResourceID,
		commit: func(id string) (router.Route, error) {
			idx := catalog.IndexFromForm(f)
			idx.Name = id
			return router.Route{View: router.IndexDetails, Collection: idx.Collection, Index: idx.Name}, d.Catalog.AddIndex(idx)
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
