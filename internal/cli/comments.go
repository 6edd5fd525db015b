package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/comments"
	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/export"
	"github.com/chazuruo/aoss-console/internal/router"
)

// CommentsOptions contains the options shared by the comments subcommands.
type CommentsOptions struct {
	Screen string
	Format string
}

// NewCommentsCommand creates the comments command group.
func NewCommentsCommand() *cobra.Command {
	opts := &CommentsOptions{}

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write the comments left on console screens",
		Long: `Read and write review comments.

Comments are scoped to a screen, named by its title ("Collections") or its
route ("#/collections"). They are stored in the remote comment service when
one is configured and in the local store otherwise.`,
	}
	cmd.PersistentFlags().StringVarP(&opts.Screen, "screen", "s", router.Collections.ScreenName(), "screen name or route")

	cmd.AddCommand(newCommentsListCommand(opts))
	cmd.AddCommand(newCommentsAddCommand(opts))
	cmd.AddCommand(newCommentsEditCommand(opts))
	cmd.AddCommand(newCommentsDeleteCommand(opts))
	cmd.AddCommand(newCommentsPinsCommand(opts))
	cmd.AddCommand(newCommentsExportCommand(opts))
	return cmd
}

// resolveScreen accepts a screen name or a route hash with or without "#/".
func resolveScreen(s string) (string, error) {
	s = strings.TrimSpace(s)
	hash := "#/" + strings.TrimPrefix(strings.TrimPrefix(s, "#"), "/")
	var names []string
	for _, v := range router.Views() {
		if strings.EqualFold(v.ScreenName(), s) || v.String() == hash {
			return v.ScreenName(), nil
		}
		names = append(names, v.ScreenName())
	}
	return "", errors.Invalidf("unknown screen %q (one of: %s)", s, strings.Join(names, ", "))
}

// withController loads the env and a controller for the selected screen.
func (o *CommentsOptions) withController(cmd *cobra.Command, fn func(c *comments.Controller) error) error {
	screen, err := resolveScreen(o.Screen)
	if err != nil {
		return err
	}
	e, err := loadEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e.controller(screen))
}

func newCommentsListCommand(opts *CommentsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a screen's comments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.Format)
			if err != nil {
				return err
			}
			return opts.withController(cmd, func(c *comments.Controller) error {
				return printComments(cmd.OutOrStdout(), format, c.Screen(), c.Load(cmd.Context()))
			})
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table, json, plain)")
	return cmd
}

func newCommentsAddCommand(opts *CommentsOptions) *cobra.Command {
	var pin string
	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a comment",
		Long: `Add a comment to a screen.

Examples:
  aoss comments add "Rename this column"
  aoss comments add --screen "Create Collection" --pin 40,12 "Tile copy is unclear"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePin(pin)
			if err != nil {
				return err
			}
			return opts.withController(cmd, func(c *comments.Controller) error {
				c.Load(cmd.Context())
				cm, err := c.Submit(cmd.Context(), strings.Join(args, " "), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added comment %s on %s\n", cm.Timestamp, c.Screen())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pin, "pin", "", "anchor the comment at column,row")
	return cmd
}

func newCommentsEditCommand(opts *CommentsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <timestamp> <text>...",
		Short: "Replace the text of a comment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withController(cmd, func(c *comments.Controller) error {
				cm, err := findComment(c.Load(cmd.Context()), args[0])
				if err != nil {
					return err
				}
				if _, err := c.Edit(cmd.Context(), cm, strings.Join(args[1:], " ")); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated comment %s\n", cm.Timestamp)
				return nil
			})
		},
	}
}

func newCommentsDeleteCommand(opts *CommentsOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <timestamp>",
		Aliases: []string{"rm"},
		Short:   "Delete a comment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withController(cmd, func(c *comments.Controller) error {
				cm, err := findComment(c.Load(cmd.Context()), args[0])
				if err != nil {
					return err
				}
				c.Delete(cmd.Context(), cm)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %s\n", cm.Timestamp)
				return nil
			})
		},
	}
}

func newCommentsPinsCommand(opts *CommentsOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "pins [on|off]",
		Short:     "Show or set pin visibility",
		Long:      "Show or set whether comment pins are drawn. The setting applies to every screen.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withController(cmd, func(c *comments.Controller) error {
				if len(args) == 1 {
					switch args[0] {
					case "on":
						c.SetShowPins(cmd.Context(), true)
					case "off":
						c.SetShowPins(cmd.Context(), false)
					default:
						return errors.Invalidf("pins must be on or off, got %q", args[0])
					}
				}
				state := "hidden"
				if c.ShowPins() {
					state = "shown"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pins are %s\n", state)
				return nil
			})
		},
	}
}

func findComment(list []comments.Comment, timestamp string) (comments.Comment, error) {
	i := slices.IndexFunc(list, func(c comments.Comment) bool { return c.Timestamp == timestamp })
	if i < 0 {
		return comments.Comment{}, fmt.Errorf("comment %s: %w", timestamp, errors.ErrNotFound)
	}
	return list[i], nil
}

// parsePin reads "x,y". An empty string means no pin.
func parsePin(s string) (*comments.Pin, error) {
	if s == "" {
		return nil, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if !ok || errX != nil || errY != nil || x < 0 || y < 0 {
		return nil, errors.Invalidf("pin %q must be column,row", s)
	}
	return &comments.Pin{X: x, Y: y}, nil
}

func printComments(w io.Writer, format OutputFormat, screen string, list []comments.Comment) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case FormatPlain:
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Timestamp, c.Author, c.Text)
		}
		return nil
	}

	if len(list) == 0 {
		fmt.Fprintf(w, "No comments on %s\n", screen)
		return nil
	}
	tbl := table.New("Timestamp", "Author", "Pin", "Comment").
		WithWriter(w).
		WithHeaderFormatter(headerFmt)
	for _, c := range list {
		pin := "-"
		if p, ok := c.Pin(); ok {
			pin = fmt.Sprintf("%d,%d", p.X, p.Y)
		}
		tbl.AddRow(c.Timestamp, c.Author, pin, comments.Preview(c))
	}
	tbl.Print()
	fmt.Fprintf(w, "\n%d comments on %s\n", len(list), screen)
	return nil
}

// ExportOptions contains the options for comments export.
type ExportOptions struct {
	All       bool
	Format    string
	Out       string
	Template  string
	SkipEmpty bool
}

func newCommentsExportCommand(opts *CommentsOptions) *cobra.Command {
	eo := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export comments for sharing",
		Long: `Export the comments of one screen, or of every screen with --all.

A --template file (Go text/template) replaces the built-in layout; it is
executed with the review: .Generated, .Count and .Screens, each holding
.Name and .Comments.

Examples:
  aoss comments export --all > review.md
  aoss comments export --all --format yaml --out review.yaml
  aoss comments export --screen "Create Collection" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := export.NewExporter(export.Options{
				Format:    export.Format(eo.Format),
				Out:       eo.Out,
				Template:  eo.Template,
				SkipEmpty: eo.SkipEmpty,
			})
			if err != nil {
				return err
			}

			screens := []string{}
			if eo.All {
				for _, v := range router.Views() {
					screens = append(screens, v.ScreenName())
				}
			} else {
				screen, err := resolveScreen(opts.Screen)
				if err != nil {
					return err
				}
				screens = append(screens, screen)
			}

			e, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			review := export.Review{Generated: time.Now().UTC()}
			for _, s := range screens {
				review.Screens = append(review.Screens, export.Screen{
					Name:     s,
					Comments: e.controller(s).Load(cmd.Context()),
				})
			}

			out, err := ex.Export(review)
			if err != nil {
				return err
			}
			if eo.Out != "" && eo.Out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d comments to %s\n", review.Count(), eo.Out)
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&eo.All, "all", false, "export every screen")
	cmd.Flags().StringVar(&eo.Format, "format", string(export.FormatMarkdown), "export format (md, yaml, json)")
	cmd.Flags().StringVarP(&eo.Out, "out", "O", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&eo.Template, "template", "", "custom text/template file")
	cmd.Flags().BoolVar(&eo.SkipEmpty, "skip-empty", false, "leave out screens without comments")
	return cmd
}
