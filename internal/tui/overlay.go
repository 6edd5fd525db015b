package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/chazuruo/aoss-console/internal/comments"
)

const panelWidth = 46

const (
	pinMarker    = "◆"
	cursorMarker = "✚"
)

// Overlay results name their controller so a reply arriving after
// navigation is dropped.
type (
	commentsChangedMsg struct {
		ctrl *comments.Controller
		err  error
	}
	refreshTickMsg struct {
		ctrl *comments.Controller
	}
)

// overlay is the comments layer drawn over every screen.
type overlay struct {
	ctrl     *comments.Controller
	ctx      context.Context
	st       Styles
	keys     keyMap
	interval time.Duration
	mouse    bool

	open      bool
	cursor    int
	composer  textarea.Model
	composing bool
	editing   *comments.Comment
	pinCursor comments.Pin
	hover     *comments.Comment
	err       error
}

func newOverlay(ctx context.Context, ctrl *comments.Controller, st Styles, keys keyMap, interval time.Duration, mouse bool) *overlay {
	ta := textarea.New()
	ta.Placeholder = "Add a comment..."
	ta.ShowLineNumbers = false
	ta.SetWidth(48)
	ta.SetHeight(4)
	return &overlay{ctrl: ctrl, ctx: ctx, st: st, keys: keys, interval: interval, mouse: mouse, composer: ta}
}

// Init loads the screen's comments and starts polling.
func (o *overlay) Init() tea.Cmd {
	return tea.Batch(o.load(), o.tick())
}

func (o *overlay) load() tea.Cmd {
	ctrl, ctx := o.ctrl, o.ctx
	return func() tea.Msg {
		ctrl.Load(ctx)
		return commentsChangedMsg{ctrl: ctrl}
	}
}

func (o *overlay) tick() tea.Cmd {
	if o.interval <= 0 {
		return nil
	}
	ctrl := o.ctrl
	return tea.Tick(o.interval, func(time.Time) tea.Msg { return refreshTickMsg{ctrl: ctrl} })
}

func (o *overlay) refresh() tea.Cmd {
	ctrl, ctx := o.ctrl, o.ctx
	return func() tea.Msg {
		if _, changed := ctrl.Refresh(ctx); !changed {
			return nil
		}
		return commentsChangedMsg{ctrl: ctrl}
	}
}

// Capturing reports whether the overlay owns the keyboard.
func (o *overlay) Capturing() bool {
	return o.composing || o.open || (o.ctrl.PinMode() && !o.mouse)
}

// Message handles an overlay result. Results for another controller are
// ignored.
func (o *overlay) Message(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case commentsChangedMsg:
		if msg.ctrl != o.ctrl {
			return nil
		}
		o.err = msg.err
		if n := len(o.ctrl.Comments()); o.cursor >= n {
			o.cursor = max(n-1, 0)
		}
	case refreshTickMsg:
		if msg.ctrl != o.ctrl {
			return nil
		}
		return tea.Batch(o.refresh(), o.tick())
	}
	return nil
}

// Key handles a key press and reports whether the overlay consumed it.
func (o *overlay) Key(km tea.KeyMsg, width, height int) (bool, tea.Cmd) {
	if o.composing {
		return true, o.composeKey(km)
	}

	if o.ctrl.PinMode() && !o.mouse {
		switch {
		case key.Matches(km, o.keys.Up):
			o.pinCursor.Y = max(o.pinCursor.Y-1, 0)
		case key.Matches(km, o.keys.Down):
			o.pinCursor.Y = min(o.pinCursor.Y+1, height-1)
		case key.Matches(km, o.keys.Left):
			o.pinCursor.X = max(o.pinCursor.X-1, 0)
		case key.Matches(km, o.keys.Right):
			o.pinCursor.X = min(o.pinCursor.X+1, width-1)
		case key.Matches(km, o.keys.Open):
			p := o.pinCursor
			return true, o.click(p.X, p.Y, o.onControls(p.X, width))
		case key.Matches(km, o.keys.Back):
			o.ctrl.ExitPinMode()
		}
		return true, nil
	}

	if o.ctrl.PinMode() && key.Matches(km, o.keys.Back) {
		o.ctrl.ExitPinMode()
		return true, nil
	}

	switch {
	case key.Matches(km, o.keys.Comments):
		o.open = !o.open
		if o.open {
			return true, o.load()
		}
		return true, nil
	case key.Matches(km, o.keys.PinMode):
		o.ctrl.EnterPinMode()
		o.pinCursor = comments.Pin{X: width / 3, Y: height / 2}
		return true, nil
	case key.Matches(km, o.keys.TogglePins):
		o.ctrl.TogglePins(o.ctx)
		return true, nil
	}

	if !o.open {
		return false, nil
	}
	list := o.ctrl.Comments()
	switch {
	case key.Matches(km, o.keys.Back):
		o.open = false
	case key.Matches(km, o.keys.Up):
		o.cursor = max(o.cursor-1, 0)
	case key.Matches(km, o.keys.Down):
		o.cursor = min(o.cursor+1, max(len(list)-1, 0))
	case key.Matches(km, o.keys.Open):
		if o.cursor < len(list) {
			o.ctrl.Toggle(list[o.cursor])
		}
	case key.Matches(km, o.keys.Delete):
		if o.cursor < len(list) {
			return true, o.remove(list[o.cursor])
		}
	case key.Matches(km, o.keys.Edit):
		if o.cursor < len(list) {
			cm := list[o.cursor]
			o.editing = &cm
			o.composer.SetValue(cm.Text)
			return true, o.startComposer()
		}
	case km.String() == "c":
		o.editing = nil
		o.composer.Reset()
		return true, o.startComposer()
	default:
		return false, nil
	}
	return true, nil
}

func (o *overlay) composeKey(km tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(km, o.keys.Submit):
		return o.save()
	case key.Matches(km, o.keys.Back):
		o.closeComposer()
		return nil
	}
	var cmd tea.Cmd
	o.composer, cmd = o.composer.Update(km)
	return cmd
}

func (o *overlay) startComposer() tea.Cmd {
	o.composing = true
	o.err = nil
	return o.composer.Focus()
}

func (o *overlay) closeComposer() {
	o.composing = false
	o.editing = nil
	o.composer.Blur()
	o.composer.Reset()
	o.ctrl.DiscardPending()
}

// save submits or edits. Blank text keeps the composer open with the error.
func (o *overlay) save() tea.Cmd {
	ctrl, ctx, text := o.ctrl, o.ctx, o.composer.Value()
	if strings.TrimSpace(text) == "" {
		_, o.err = ctrl.Submit(ctx, text, nil)
		return nil
	}
	editing := o.editing
	var pin *comments.Pin
	if p, ok := ctrl.PendingPin(); ok {
		pin = &p
	}
	o.composing = false
	o.editing = nil
	o.composer.Blur()
	o.composer.Reset()
	return func() tea.Msg {
		var err error
		if editing != nil {
			_, err = ctrl.Edit(ctx, *editing, text)
		} else {
			_, err = ctrl.Submit(ctx, text, pin)
		}
		return commentsChangedMsg{ctrl: ctrl, err: err}
	}
}

func (o *overlay) remove(cm comments.Comment) tea.Cmd {
	ctrl, ctx := o.ctrl, o.ctx
	return func() tea.Msg {
		ctrl.Delete(ctx, cm)
		return commentsChangedMsg{ctrl: ctrl}
	}
}

func (o *overlay) onControls(x, width int) bool {
	return o.open && x >= width-panelWidth
}

func (o *overlay) click(x, y int, onControls bool) tea.Cmd {
	if !o.ctrl.Click(x, y, onControls) {
		return nil
	}
	o.editing = nil
	o.composer.Reset()
	return o.startComposer()
}

// Mouse handles clicks and hover. It reports whether the event was consumed.
func (o *overlay) Mouse(msg tea.MouseMsg, width int) (bool, tea.Cmd) {
	switch {
	case msg.Action == tea.MouseActionMotion:
		o.hover = o.pinAt(msg.X, msg.Y)
		return false, nil
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if o.composing {
			return true, nil
		}
		if o.ctrl.PinMode() {
			return true, o.click(msg.X, msg.Y, o.onControls(msg.X, width))
		}
		if cm := o.pinAt(msg.X, msg.Y); cm != nil {
			o.ctrl.Toggle(*cm)
			o.open = true
			return true, nil
		}
		return o.onControls(msg.X, width), nil
	}
	return false, nil
}

func (o *overlay) pinAt(x, y int) *comments.Comment {
	if !o.ctrl.ShowPins() {
		return nil
	}
	for _, cm := range o.ctrl.Comments() {
		if p, ok := cm.Pin(); ok && p.X == x && p.Y == y {
			return &cm
		}
	}
	return nil
}

// Decorate draws pins, the panel and the composer over a full frame.
func (o *overlay) Decorate(base string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	lines := canvas(base, width, height)
	expanded, hasExpanded := o.ctrl.Expanded()

	if o.ctrl.ShowPins() {
		for _, cm := range o.ctrl.Comments() {
			p, ok := cm.Pin()
			if !ok {
				continue
			}
			style := o.st.Pin
			if hasExpanded && expanded.Timestamp == cm.Timestamp {
				style = o.st.PinActive
			}
			placeAt(lines, style.Render(pinMarker), width, p.X, p.Y)
		}
	}
	if p, ok := o.ctrl.PendingPin(); ok {
		placeAt(lines, o.st.PinActive.Render(pinMarker), width, p.X, p.Y)
	}
	if o.ctrl.PinMode() && !o.mouse {
		placeAt(lines, o.st.PinActive.Render(cursorMarker), width, o.pinCursor.X, o.pinCursor.Y)
	}

	if o.open {
		placeAt(lines, o.panel(height), width, width-panelWidth, 0)
	}

	if o.hover != nil && !o.composing {
		if p, ok := o.hover.Pin(); ok {
			tip := o.st.Tooltip.Render(o.hover.Author + ": " + comments.Preview(*o.hover))
			placeAt(lines, tip, width, min(p.X+2, max(width-ansi.StringWidth(tip), 0)), p.Y+1)
		}
	}

	if o.composing {
		box := o.composerView()
		bw := ansi.StringWidth(strings.Split(box, "\n")[0])
		x, y := (width-bw)/2, height/3
		if p, ok := o.ctrl.PendingPin(); ok {
			x, y = min(p.X+2, max(width-bw, 0)), min(p.Y+1, max(height-8, 0))
		}
		placeAt(lines, box, width, x, y)
	}

	if o.ctrl.PinMode() {
		hint := "Click anywhere to place a comment pin. esc cancels."
		if !o.mouse {
			hint = "Move with the arrow keys, enter to place a pin, esc to cancel."
		}
		placeAt(lines, o.st.Tooltip.Render(hint), width, 0, height-1)
	}
	return strings.Join(lines, "\n")
}

func (o *overlay) composerView() string {
	title := "New comment"
	if o.editing != nil {
		title = "Edit comment"
	}
	body := o.st.PanelTitle.Render(title) + "\n" + o.composer.View() + "\n"
	if o.err != nil {
		body += o.st.Error.Render(o.err.Error()) + "\n"
	}
	body += o.st.Help.Render("ctrl+s save  esc discard")
	return o.st.Card.Render(body)
}

func (o *overlay) panel(height int) string {
	list := o.ctrl.Comments()
	inner := panelWidth - 4

	var b strings.Builder
	b.WriteString(o.st.PanelTitle.Render(fmt.Sprintf("Comments (%d)", len(list))))
	b.WriteString("\n")
	b.WriteString(o.st.Muted.Render(o.ctrl.Screen()))
	b.WriteString("\n\n")
	if len(list) == 0 {
		b.WriteString(o.st.Muted.Render("No comments on this screen yet."))
		b.WriteString("\n")
	}

	expanded, hasExpanded := o.ctrl.Expanded()
	for i, cm := range list {
		head := cm.Author + " · " + comments.FormatTimestamp(cm.Timestamp, nil)
		if _, ok := cm.Pin(); ok {
			head = pinMarker + " " + head
		}
		if i == o.cursor {
			b.WriteString(o.st.Selected.Render(ansi.Truncate("> "+head, inner, "…")))
		} else {
			b.WriteString(o.st.Label.Render(ansi.Truncate("  "+head, inner, "…")))
		}
		b.WriteString("\n")
		if hasExpanded && expanded.Timestamp == cm.Timestamp {
			b.WriteString(ansi.Wordwrap(cm.Text, inner-2, " "))
		} else {
			b.WriteString(o.st.Muted.Render(ansi.Truncate(comments.Preview(cm), inner, "…")))
		}
		b.WriteString("\n\n")
	}
	if o.err != nil {
		b.WriteString(o.st.Error.Render(o.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(o.st.Help.Render("c new  enter expand  ctrl+e edit  ctrl+d delete  esc close"))

	return o.st.Panel.Width(panelWidth - 2).Height(max(height-2, 1)).MaxHeight(height).Render(b.String())
}
