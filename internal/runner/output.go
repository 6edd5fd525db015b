package runner

import (
	"fmt"
	"io"

	"github.com/chazuruo/aoss-console/internal/workflows"
)

// Reporter writes step transitions as plain lines, one per status change.
type Reporter struct {
	w    io.Writer
	seen map[string]workflows.Status
	run  string
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, seen: make(map[string]workflows.Status)}
}

// Report prints every step whose status changed since the last snapshot.
func (r *Reporter) Report(s Snapshot) error {
	if s.RunID != r.run {
		r.run = s.RunID
		clear(r.seen)
		if s.Attempt > 1 {
			if _, err := fmt.Fprintf(r.w, "Retrying (attempt %d)\n", s.Attempt); err != nil {
				return err
			}
		}
	}
	for _, step := range s.Steps {
		if prev, ok := r.seen[step.Label]; ok && prev == step.Status {
			continue
		}
		r.seen[step.Label] = step.Status
		if step.Status == workflows.Pending {
			continue
		}
		if _, err := fmt.Fprintf(r.w, "%s %s\n", Icon(step.Status), step.Label); err != nil {
			return err
		}
	}
	return nil
}

// Icon returns the marker shown beside a step.
func Icon(s workflows.Status) string {
	switch s {
	case workflows.Success:
		return "✓"
	case workflows.Error:
		return "✗"
	case workflows.InProgress:
		return "▶"
	default:
		return "○"
	}
}
