// Package export renders review comments as Markdown, YAML or JSON so they
// can be shared outside the console.
package export

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/chazuruo/aoss-console/internal/comments"
	"github.com/chazuruo/aoss-console/internal/errors"
)

// Format represents the export format.
type Format string

const (
	// FormatMarkdown exports as Markdown.
	FormatMarkdown Format = "md"
	// FormatYAML exports as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON exports as JSON.
	FormatJSON Format = "json"
)

// Screen is the comments left on one screen, newest first.
type Screen struct {
	Name     string             `json:"screen" yaml:"screen"`
	Comments []comments.Comment `json:"comments" yaml:"comments"`
}

// Review is everything an export covers.
type Review struct {
	Generated time.Time `json:"generated" yaml:"generated"`
	Screens   []Screen  `json:"screens" yaml:"screens"`
}

// Count returns the number of comments across all screens.
func (r Review) Count() int {
	n := 0
	for _, s := range r.Screens {
		n += len(s.Comments)
	}
	return n
}

// Options contains export options.
type Options struct {
	Format Format
	// Out is written when set. "-" means stdout only.
	Out string
	// Template is a text/template file that replaces the built-in rendering.
	Template string
	// SkipEmpty leaves out screens without comments.
	SkipEmpty bool
}

// Exporter renders reviews.
type Exporter struct {
	opts     Options
	template *template.Template
}

// NewExporter checks the format and loads any custom template.
func NewExporter(opts Options) (*Exporter, error) {
	switch opts.Format {
	case FormatMarkdown, FormatYAML, FormatJSON:
	default:
		return nil, errors.Invalidf("unsupported format %q (must be md, yaml or json)", opts.Format)
	}

	e := &Exporter{opts: opts}
	switch {
	case opts.Template != "":
		data, err := os.ReadFile(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("reading template file: %w", err)
		}
		if e.template, err = newTemplate().Parse(string(data)); err != nil {
			return nil, errors.Invalidf("template %s: %v", opts.Template, err)
		}
	case opts.Format == FormatMarkdown:
		e.template = template.Must(newTemplate().Parse(markdownTemplate))
	}
	return e, nil
}

func newTemplate() *template.Template {
	return template.New("export").Funcs(template.FuncMap{
		"preview": comments.Preview,
		"pin": func(c comments.Comment) string {
			if p, ok := c.Pin(); ok {
				return fmt.Sprintf("%d,%d", p.X, p.Y)
			}
			return ""
		},
		"indent": func(prefix, s string) string {
			return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
		},
	})
}

// Export renders r and writes it to Options.Out when one is set.
func (e *Exporter) Export(r Review) (string, error) {
	if e.opts.SkipEmpty {
		kept := r.Screens[:0:0]
		for _, s := range r.Screens {
			if len(s.Comments) > 0 {
				kept = append(kept, s)
			}
		}
		r.Screens = kept
	}

	out, err := e.render(r)
	if err != nil {
		return "", err
	}

	if e.opts.Out != "" && e.opts.Out != "-" {
		if err := os.WriteFile(e.opts.Out, out, 0o644); err != nil {
			return "", fmt.Errorf("%w: writing %s: %v", errors.ErrIO, e.opts.Out, err)
		}
	}
	return string(out), nil
}

func (e *Exporter) render(r Review) ([]byte, error) {
	if e.template != nil {
		var buf bytes.Buffer
		if err := e.template.Execute(&buf, r); err != nil {
			return nil, fmt.Errorf("executing template: %w", err)
		}
		return buf.Bytes(), nil
	}
	if e.opts.Format == FormatYAML {
		return yaml.Marshal(r)
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// markdownTemplate is the default Markdown layout.
const markdownTemplate = `# Review comments

Generated {{.Generated.Format "2006-01-02 15:04 MST"}}, {{.Count}} comments.
{{range .Screens}}
## {{.Name}}
{{if not .Comments}}
No comments.
{{end}}{{range .Comments}}
- **{{.Author}}** at {{.Timestamp}}{{with pin .}} (pinned at {{.}}){{end}}

{{indent "  > " .Text}}
{{end}}{{end}}`
