package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/catalog"
)

// OutputFormat defines the output format for the list commands.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatPlain OutputFormat = "plain"
)

func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatPlain:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be table, json, or plain)", s)
}

// ListOptions contains the options shared by the list commands.
type ListOptions struct {
	Filter     string
	Page       int
	PageSize   int
	Sort       string
	Descending bool
	Format     string
}

func (o *ListOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Filter, "filter", "", "case-insensitive match on name and description")
	cmd.Flags().IntVar(&o.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&o.PageSize, "page-size", 0, "rows per page (default [catalog].page_size)")
	cmd.Flags().StringVar(&o.Sort, "sort", "", "sort field (name, creationDate)")
	cmd.Flags().BoolVar(&o.Descending, "desc", false, "sort descending")
	cmd.Flags().StringVar(&o.Format, "format", "table", "output format (table, json, plain)")
}

func (o *ListOptions) query(defaultPageSize int) (catalog.Query, error) {
	switch o.Sort {
	case "", catalog.SortName, catalog.SortCreated:
	default:
		return catalog.Query{}, fmt.Errorf("invalid sort field: %s (must be %s or %s)", o.Sort, catalog.SortName, catalog.SortCreated)
	}
	if _, err := parseFormat(o.Format); err != nil {
		return catalog.Query{}, err
	}
	size := o.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	return catalog.Query{Filter: o.Filter, SortField: o.Sort, Descending: o.Descending, Page: o.Page, PageSize: size}, nil
}

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Work with collections",
	}
	cmd.AddCommand(newCollectionsListCommand())
	return cmd
}

func newCollectionsListCommand() *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long: `List collections with filtering, sorting and paging.

Examples:
  aoss collections list
  aoss collections list --filter vector
  aoss collections list --sort creationDate --desc --page 2
  aoss collections list --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()
			q, err := opts.query(e.cfg.Catalog.PageSize)
			if err != nil {
				return err
			}
			page := catalog.Run(e.catalog.Collections(), q)
			return printPage(cmd.OutOrStdout(), OutputFormat(opts.Format), page, "collections",
				[]any{"Name", "Status", "Type", "Version", "Group", "Created"},
				func(c catalog.Collection) []any {
					return []any{c.Name, c.Status, c.Type.DisplayName(), c.Version.DisplayName(), c.GroupText(), catalog.FormatDate(c.Created)}
				},
				func(c catalog.Collection) string { return c.Name })
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// NewGroupsCommand creates the collection groups command group.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"collection-groups"},
		Short:   "Work with collection groups",
	}
	cmd.AddCommand(newGroupsListCommand())
	return cmd
}

func newGroupsListCommand() *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collection groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()
			q, err := opts.query(e.cfg.Catalog.PageSize)
			if err != nil {
				return err
			}
			page := catalog.Run(e.catalog.Groups(), q)
			return printPage(cmd.OutOrStdout(), OutputFormat(opts.Format), page, "collection groups",
				[]any{"Name", "Version", "Indexing", "Search", "Collections"},
				func(g catalog.Group) []any {
					return []any{g.Name, g.Version.DisplayName(), g.IndexingText(), g.SearchText(), e.catalog.GroupCollections(g.Name)}
				},
				func(g catalog.Group) string { return g.Name })
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// NewIndexesCommand creates the indexes command group.
func NewIndexesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Work with the indexes of a collection",
	}
	cmd.AddCommand(newIndexesListCommand())
	return cmd
}

func newIndexesListCommand() *cobra.Command {
	opts := &ListOptions{}
	var collection string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the indexes of a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()
			if _, err := e.catalog.Collection(collection); err != nil {
				return err
			}
			q, err := opts.query(e.cfg.Catalog.PageSize)
			if err != nil {
				return err
			}
			page := catalog.Run(e.catalog.Indexes(collection), q)
			return printPage(cmd.OutOrStdout(), OutputFormat(opts.Format), page, "indexes",
				[]any{"Name", "Data retention", "Hot storage", "Documents", "Created"},
				func(i catalog.Index) []any {
					return []any{i.Name, i.DataRetention, i.HotStorageRetention, i.Documents, catalog.FormatDate(i.Created)}
				},
				func(i catalog.Index) string { return i.Name })
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "collection name (required)")
	_ = cmd.MarkFlagRequired("collection")
	opts.addFlags(cmd)
	return cmd
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func headerFmt(format string, vals ...any) string {
	return headerStyle.Render(fmt.Sprintf(format, vals...))
}

// printPage writes one page of results in the requested format.
func printPage[T any](w io.Writer, format OutputFormat, page catalog.Page[T], noun string, headers []any, row func(T) []any, name func(T) string) error {
	switch format {
	case FormatJSON:
		out := struct {
			Items       []T `json:"items"`
			Matches     int `json:"matches"`
			Total       int `json:"total"`
			CurrentPage int `json:"currentPage"`
			PagesCount  int `json:"pagesCount"`
		}{page.Items, page.Matches, page.Total, page.CurrentPage, page.PagesCount}
		if out.Items == nil {
			out.Items = []T{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)

	case FormatPlain:
		for _, it := range page.Items {
			fmt.Fprintln(w, name(it))
		}
		return nil
	}

	if len(page.Items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", noun)
		return nil
	}
	tbl := table.New(headers...).WithWriter(w).WithHeaderFormatter(headerFmt)
	for _, it := range page.Items {
		tbl.AddRow(row(it)...)
	}
	tbl.Print()
	fmt.Fprintf(w, "\n%s, page %d of %d\n", page.CountText(), page.CurrentPage, max(page.PagesCount, 1))
	return nil
}
