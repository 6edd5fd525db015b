package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazuruo/aoss-console/internal/forms"
)

// field is one editable control on a create screen.
type field interface {
	Label() string
	View(st Styles, focused bool) string
	// Update handles a key while the field has focus.
	Update(km tea.KeyMsg) tea.Cmd
	Focus() tea.Cmd
	Blur()
	Visible() bool
}

func always() bool { return true }

// textField edits a string and writes every change through set.
type textField struct {
	label string
	input textinput.Model
	set   func(string)
	show  func() bool
}

func newTextField(label, value, placeholder string, set func(string)) *textField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CharLimit = 256
	return &textField{label: label, input: in, set: set, show: always}
}

// intField edits a positive integer. Unparseable input stores zero so
// validation reports it.
func newIntField(label string, value int, set func(int)) *textField {
	f := newTextField(label, strconv.Itoa(value), "", func(s string) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			n = 0
		}
		set(n)
	})
	f.input.CharLimit = 6
	return f
}

func (f *textField) when(show func() bool) *textField { f.show = show; return f }

func (f *textField) Label() string  { return f.label }
func (f *textField) Visible() bool  { return f.show() }
func (f *textField) Focus() tea.Cmd { return f.input.Focus() }
func (f *textField) Blur()          { f.input.Blur() }
func (f *textField) Value() string  { return f.input.Value() }

// SetValue replaces the text and writes it through.
func (f *textField) SetValue(s string) {
	f.input.SetValue(s)
	f.set(s)
}

func (f *textField) Update(km tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	before := f.input.Value()
	f.input, cmd = f.input.Update(km)
	if v := f.input.Value(); v != before {
		f.set(v)
	}
	return cmd
}

func (f *textField) View(_ Styles, _ bool) string { return f.input.View() }

// choiceField cycles through mutually exclusive options with left and right.
type choiceField struct {
	label  string
	labels []string
	index  func() int
	step   func(dir int)
	desc   func() string
	show   func() bool
}

// selectField binds a choiceField to a forms.Selection. onChange, when set,
// runs after every change.
func selectField[T comparable](label string, sel *forms.Selection[T], onChange func(T)) *choiceField {
	opts := sel.Options()
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	return &choiceField{
		label:  label,
		labels: labels,
		index:  sel.Index,
		step: func(dir int) {
			if dir > 0 {
				sel.Next()
			} else {
				sel.Prev()
			}
			if onChange != nil {
				onChange(sel.Selected())
			}
		},
		desc: func() string { return sel.SelectedOption().Description },
		show: always,
	}
}

// capacityField selects an OCU bound and stores it in *bound.
func capacityField(label string, values []forms.OCU, withNone bool, bound *forms.OCU) *choiceField {
	opts := forms.CapacityOptions(values, withNone)
	def := opts[len(opts)-1].Value
	for _, o := range opts {
		if o.Value == *bound {
			def = *bound
		}
	}
	sel := forms.NewSelection(def, opts...)
	*bound = def
	return selectField(label, &sel, func(v forms.OCU) { *bound = v })
}

func (f *choiceField) when(show func() bool) *choiceField { f.show = show; return f }

func (f *choiceField) Label() string  { return f.label }
func (f *choiceField) Visible() bool  { return f.show() }
func (f *choiceField) Focus() tea.Cmd { return nil }
func (f *choiceField) Blur()          {}

func (f *choiceField) Update(km tea.KeyMsg) tea.Cmd {
	switch km.String() {
	case "left", "h":
		f.step(-1)
	case "right", "l", " ":
		f.step(1)
	}
	return nil
}

func (f *choiceField) View(st Styles, focused bool) string {
	cur := f.index()
	parts := make([]string, len(f.labels))
	for i, l := range f.labels {
		switch {
		case i == cur && focused:
			parts[i] = st.Selected.Render("(•) " + l)
		case i == cur:
			parts[i] = st.Label.Render("(•) " + l)
		default:
			parts[i] = st.Muted.Render("( ) " + l)
		}
	}
	out := strings.Join(parts, "  ")
	if focused && f.desc != nil {
		if d := f.desc(); d != "" {
			out += "\n" + st.Muted.Render(d)
		}
	}
	return out
}
