package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/chazuruo/aoss-console/internal/runner"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// renderSteps draws the workflow progress list. The in-progress step shows
// the spinner frame.
func renderSteps(st Styles, snap runner.Snapshot, spin spinner.Model) string {
	if len(snap.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	for _, step := range snap.Steps {
		icon := runner.Icon(step.Status)
		if step.Status == workflows.InProgress {
			icon = spin.View()
		}
		style := st.Status[step.Status]
		b.WriteString(style.Render(fmt.Sprintf("%s %s", icon, step.Label)))
		if step.Status == workflows.Error {
			b.WriteString(st.Error.Render(" (failed)"))
		}
		b.WriteString("\n")
	}
	switch snap.State {
	case workflows.Failed:
		b.WriteString(st.Error.Render("Creation failed. Review the settings and press ctrl+r to retry."))
		b.WriteString("\n")
	case workflows.Completed:
		b.WriteString(st.Success.Render("Created successfully."))
		b.WriteString("\n")
	}
	if snap.Attempt > 1 {
		b.WriteString(st.Muted.Render(fmt.Sprintf("Attempt %d", snap.Attempt)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderActions(st Styles, actions []runner.Action) string {
	if len(actions) == 0 {
		return st.Muted.Render("[ Creating... ]")
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		switch a {
		case runner.ActionSubmit:
			parts[i] = st.Selected.Render("[ Create (ctrl+s) ]")
		case runner.ActionRetry:
			parts[i] = st.Selected.Render("[ Retry (ctrl+r) ]")
		default:
			parts[i] = st.Muted.Render("[ " + a.String() + " (esc) ]")
		}
	}
	return strings.Join(parts, "  ")
}
