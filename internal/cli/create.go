package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/forms"
	"github.com/chazuruo/aoss-console/internal/runner"
)

// CreateOptions contains the options shared by the create commands.
type CreateOptions struct {
	Interactive bool
	FailFirst   bool
	Retries     int
}

func (o *CreateOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false, "fill in the form interactively")
	cmd.Flags().BoolVar(&o.FailFirst, "fail-first", true, "make the first attempt fail (overrides [provisioning].fail_first_attempt)")
	cmd.Flags().IntVar(&o.Retries, "retries", 1, "retries after a failed attempt (interactive mode asks instead)")
}

// failFirst resolves the flag against the config default.
func (o *CreateOptions) failFirst(cmd *cobra.Command, e *env) bool {
	if cmd.Flags().Changed("fail-first") {
		return o.FailFirst
	}
	return e.cfg.Provisioning.FailFirstAttempt
}

// NewCreateCommand creates the create command group.
func NewCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection, collection group or index",
		Long: `Create a resource and follow its provisioning steps.

Each step is printed as it starts and finishes. When a step fails the
workflow can be retried from the first step.`,
	}
	cmd.AddCommand(newCreateCollectionCommand())
	cmd.AddCommand(newCreateGroupCommand())
	cmd.AddCommand(newCreateIndexCommand())
	return cmd
}

// creation is a validated form ready to provision.
type creation struct {
	kind       string
	resourceID string
	steps      []string
	commit     func() error
}

// provision runs the workflow, retrying on failure, and commits the resource
// when it completes.
func provision(ctx context.Context, w io.Writer, orch *runner.Orchestrator, c creation, retry func(attempt int) bool) error {
	defer orch.Close()

	done := make(chan error, 1)
	req := runner.Request{
		Steps:      c.steps,
		ResourceID: c.resourceID,
		OnComplete: func(string) { done <- nil },
		OnError:    func(err error) { done <- err },
	}

	fmt.Fprintf(w, "Creating %s %s\n", c.kind, c.resourceID)
	if err := orch.Start(ctx, req); err != nil {
		return err
	}

	rep := runner.NewReporter(w)
	updates := orch.Updates()
	drain := func() {
		for {
			select {
			case snap := <-updates:
				_ = rep.Report(snap)
			default:
				return
			}
		}
	}

	for {
		select {
		case snap := <-updates:
			if err := rep.Report(snap); err != nil {
				return err
			}
		case err := <-done:
			drain()
			if err == nil {
				if err := c.commit(); err != nil {
					return err
				}
				fmt.Fprintf(w, "Created %s %s\n", c.kind, c.resourceID)
				return nil
			}
			attempt := orch.Snapshot().Attempt
			if !retry(attempt) {
				return err
			}
			if err := orch.Retry(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// retryPolicy asks in interactive mode and otherwise allows opts.Retries.
func (o *CreateOptions) retryPolicy() func(attempt int) bool {
	if o.Interactive {
		return func(int) bool {
			again := true
			err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().Title("Creation failed. Retry?").Value(&again),
			)).Run()
			return err == nil && again
		}
	}
	return func(attempt int) bool { return attempt <= o.Retries }
}

func runCreation(cmd *cobra.Command, opts *CreateOptions, build func(e *env) (creation, error)) error {
	if opts.Interactive && IsNoTUI() {
		return errors.Invalidf("--interactive cannot be combined with --no-tui")
	}
	e, err := loadEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := build(e)
	if err != nil {
		return err
	}
	orch := e.orchestrator(opts.failFirst(cmd, e))
	return provision(cmd.Context(), cmd.OutOrStdout(), orch, c, opts.retryPolicy())
}

// Collections

// CollectionOptions are the collection form fields settable by flag.
type CollectionOptions struct {
	CreateOptions
	Description string
	Type        string
	Version     string
	Method      string
	Group       string
	Network     string
	VPCEndpoint []string
	KMSKey      string
	NewPolicy   bool
}

func newCreateCollectionCommand() *cobra.Command {
	opts := &CollectionOptions{}
	cmd := &cobra.Command{
		Use:   "collection [name]",
		Short: "Create a collection",
		Long: `Create a collection.

Easy create places the collection in an existing collection group with
recommended settings. Standard create uses --group as an existing group, or
creates it when no group has that name.

Examples:
  aoss create collection logs-2025 --type timeseries
  aoss create collection vectors --type vectorsearch --method standard-create --group my-group
  aoss create collection legacy --version v1
  aoss create collection --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreation(cmd, &opts.CreateOptions, func(e *env) (creation, error) {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				if opts.Interactive {
					if err := opts.ask(e, &name); err != nil {
						return creation{}, err
					}
				}
				if opts.Version == string(forms.V1) {
					return opts.v1(e, name)
				}
				return opts.v2(e, name)
			})
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Description, "description", "", "collection description")
	cmd.Flags().StringVar(&opts.Type, "type", string(forms.TimeSeries), "collection type (timeseries, search, vectorsearch)")
	cmd.Flags().StringVar(&opts.Version, "version", string(forms.V2), "serverless version (v1, v2)")
	cmd.Flags().StringVar(&opts.Method, "method", string(forms.MethodEasy), "creation method (easy-create, standard-create)")
	cmd.Flags().StringVar(&opts.Group, "group", "", "collection group")
	cmd.Flags().StringVar(&opts.Network, "network", string(forms.AccessPublic), "network access (public, vpc); standard create only")
	cmd.Flags().StringSliceVar(&opts.VPCEndpoint, "vpc-endpoint", nil, "VPC endpoint ID (repeatable)")
	cmd.Flags().StringVar(&opts.KMSKey, "kms-key", "", "customer managed KMS key ARN; standard create only")
	cmd.Flags().BoolVar(&opts.NewPolicy, "new-policy", false, "create a new data access policy; standard create only")
	return cmd
}

func (o *CollectionOptions) ask(e *env, name *string) error {
	var groups []huh.Option[string]
	for _, p := range e.catalog.GroupPresets() {
		groups = append(groups, huh.NewOption(p.Name, p.Name))
	}
	if o.Group == "" && len(groups) > 0 {
		o.Group = groups[0].Value
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collection name").
				Placeholder(forms.DefaultCollectionName).
				Validate(forms.ValidateCollectionName).
				Value(name),
			huh.NewInput().
				Title("Description").
				Value(&o.Description),
			huh.NewSelect[string]().
				Title("Collection type").
				Options(huhOptions(forms.CollectionTypeOptions(), func(t forms.CollectionType) string { return string(t) })...).
				Value(&o.Type),
			huh.NewSelect[string]().
				Title("Serverless version").
				Options(huhOptions(forms.VersionOptions(), func(v forms.Version) string { return string(v) })...).
				Value(&o.Version),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	if o.Version == string(forms.V1) {
		return nil
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Creation method").
				Options(huhOptions(forms.MethodOptions(), func(k forms.MethodKind) string { return string(k) })...).
				Value(&o.Method),
			huh.NewSelect[string]().
				Title("Collection group").
				Options(groups...).
				Value(&o.Group),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func (o *CollectionOptions) v2(e *env, name string) (creation, error) {
	f := forms.NewCollectionForm(e.catalog.GroupPresets())
	f.Name = name
	f.Description = o.Description
	t, ok := forms.ParseCollectionType(o.Type)
	if !ok {
		return creation{}, errors.Invalidf("unknown collection type %q", o.Type)
	}
	if err := f.Type.Select(t); err != nil {
		return creation{}, err
	}
	if err := f.SetMethod(forms.MethodKind(o.Method)); err != nil {
		return creation{}, err
	}

	var newGroup *catalog.Group
	switch m := f.Method.(type) {
	case *forms.EasyCreate:
		if o.Group != "" {
			if err := m.Group.Select(o.Group); err != nil {
				return creation{}, fmt.Errorf("group %q is not an easy create group: %w", o.Group, err)
			}
		}
	case *forms.StandardCreate:
		if o.Group != "" {
			if _, err := e.catalog.Group(o.Group); err == nil {
				m.Group = forms.Existing{Name: o.Group}
			} else {
				m.Group = forms.NewGroup{Name: o.Group, Capacity: forms.DefaultCapacity()}
			}
		}
		if g, ok := m.Group.(forms.NewGroup); ok {
			newGroup = &catalog.Group{Name: g.Name, Version: forms.V2, Capacity: g.Capacity}
		}
		if err := m.Network.Type.Select(forms.AccessType(o.Network)); err != nil {
			return creation{}, err
		}
		m.Network.VPCEndpoints = o.VPCEndpoint
		if o.KMSKey != "" {
			m.Encryption = forms.CustomerKey{ARN: o.KMSKey}
		}
		if o.NewPolicy {
			m.DataAccess = forms.New{Name: forms.DefaultPolicyName}
		}
	}

	if err := f.Validate(); err != nil {
		return creation{}, err
	}
	if err := e.catalog.CollectionAvailable(f.ResourceID()); err != nil {
		return creation{}, err
	}
	steps, err := f.Steps(e.blueprints)
	if err != nil {
		return creation{}, err
	}
	return creation{
		kind:       "collection",
		resourceID: f.ResourceID(),
		steps:      steps,
		commit: func() error {
			// An existing group of the same name is joined.
			if newGroup != nil && e.catalog.GroupAvailable(newGroup.Name) == nil {
				if err := e.catalog.AddGroup(*newGroup); err != nil {
					return err
				}
			}
			return e.catalog.AddCollection(catalog.CollectionFromForm(f))
		},
	}, nil
}

func (o *CollectionOptions) v1(e *env, name string) (creation, error) {
	f := forms.NewCollectionV1Form()
	f.Name = name
	f.Description = o.Description
	t, ok := forms.ParseCollectionType(o.Type)
	if !ok {
		return creation{}, errors.Invalidf("unknown collection type %q", o.Type)
	}
	if err := f.Type.Select(t); err != nil {
		return creation{}, err
	}
	if err := f.Validate(); err != nil {
		return creation{}, err
	}
	if err := e.catalog.CollectionAvailable(f.ResourceID()); err != nil {
		return creation{}, err
	}
	steps, err := f.Steps(e.blueprints)
	if err != nil {
		return creation{}, err
	}
	return creation{
		kind:       "collection",
		resourceID: f.ResourceID(),
		steps:      steps,
		commit:     func() error { return e.catalog.AddCollection(catalog.CollectionFromV1Form(f)) },
	}, nil
}

// Collection groups

// GroupOptions are the collection group form fields settable by flag.
type GroupOptions struct {
	CreateOptions
	Description string
	Version     string
	Deployment  string
	MinIndexing string
	MaxIndexing string
	MinSearch   string
	MaxSearch   string
}

func newCreateGroupCommand() *cobra.Command {
	opts := &GroupOptions{}
	cmd := &cobra.Command{
		Use:   "group [name]",
		Short: "Create a collection group",
		Long: `Create a collection group with shared capacity limits.

Capacity values are OCU counts; "-" leaves a minimum unset.

Examples:
  aoss create group analytics --max-indexing 48 --max-search 48
  aoss create group --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreation(cmd, &opts.CreateOptions, func(e *env) (creation, error) {
				f := forms.NewCollectionGroupForm()
				if len(args) == 1 {
					f.Name = args[0]
				}
				if opts.Interactive {
					if err := opts.ask(&f.Name); err != nil {
						return creation{}, err
					}
				}
				if err := opts.apply(f); err != nil {
					return creation{}, err
				}
				if err := f.Validate(); err != nil {
					return creation{}, err
				}
				if err := e.catalog.GroupAvailable(f.ResourceID()); err != nil {
					return creation{}, err
				}
				steps, err := f.Steps(e.blueprints)
				if err != nil {
					return creation{}, err
				}
				return creation{
					kind:       "collection group",
					resourceID: f.ResourceID(),
					steps:      steps,
					commit:     func() error { return e.catalog.AddGroup(catalog.GroupFromForm(f)) },
				}, nil
			})
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Description, "description", "", "group description")
	cmd.Flags().StringVar(&opts.Version, "version", string(forms.V2), "serverless version (v1, v2)")
	cmd.Flags().StringVar(&opts.Deployment, "deployment", string(forms.Redundant), "deployment type for v1 groups (standard, non-redundant)")
	cmd.Flags().StringVar(&opts.MinIndexing, "min-indexing", "-", "minimum indexing OCUs")
	cmd.Flags().StringVar(&opts.MaxIndexing, "max-indexing", "96", "maximum indexing OCUs")
	cmd.Flags().StringVar(&opts.MinSearch, "min-search", "-", "minimum search OCUs")
	cmd.Flags().StringVar(&opts.MaxSearch, "max-search", "96", "maximum search OCUs")
	return cmd
}

func (o *GroupOptions) ask(name *string) error {
	capacity := func(title string, value *string, withNone bool) huh.Field {
		opts := huhOptions(forms.CapacityOptions(forms.GroupCapacityOptions, withNone), forms.OCU.Label)
		return huh.NewSelect[string]().Title(title).Options(opts...).Value(value)
	}
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collection group name").
				Placeholder(forms.DefaultGroupName).
				Validate(forms.ValidateGroupName).
				Value(name),
			huh.NewInput().
				Title("Description").
				Value(&o.Description),
			huh.NewSelect[string]().
				Title("Serverless version").
				Options(huhOptions(forms.VersionOptions(), func(v forms.Version) string { return string(v) })...).
				Value(&o.Version),
		),
		huh.NewGroup(
			capacity("Minimum indexing capacity", &o.MinIndexing, true),
			capacity("Maximum indexing capacity", &o.MaxIndexing, false),
			capacity("Minimum search capacity", &o.MinSearch, true),
			capacity("Maximum search capacity", &o.MaxSearch, false),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func (o *GroupOptions) apply(f *forms.CollectionGroupForm) error {
	f.Description = o.Description
	if err := f.Version.Select(forms.Version(o.Version)); err != nil {
		return err
	}
	if err := f.Deployment.Select(forms.DeploymentType(o.Deployment)); err != nil {
		return err
	}
	bounds := []struct {
		raw string
		dst *forms.OCU
	}{
		{o.MinIndexing, &f.Capacity.MinIndexing},
		{o.MaxIndexing, &f.Capacity.MaxIndexing},
		{o.MinSearch, &f.Capacity.MinSearch},
		{o.MaxSearch, &f.Capacity.MaxSearch},
	}
	for _, b := range bounds {
		v, err := forms.ParseOCU(b.raw)
		if err != nil {
			return err
		}
		*b.dst = v
	}
	return nil
}

// Indexes

// IndexOptions are the index form fields settable by flag.
type IndexOptions struct {
	CreateOptions
	Collection string
	Retention  string
	HotStorage string
}

func newCreateIndexCommand() *cobra.Command {
	opts := &IndexOptions{}
	cmd := &cobra.Command{
		Use:   "index [name]",
		Short: "Create an index in a collection",
		Long: `Create an index in a collection.

Retention periods are written as "30d", "24h" or "30 days"; "indefinite"
keeps data forever.

Examples:
  aoss create index embeddings --collection ml-vectors-collection
  aoss create index logs --collection awd2718 --retention 30d --hot-storage 48h`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreation(cmd, &opts.CreateOptions, func(e *env) (creation, error) {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				if opts.Interactive {
					if err := opts.ask(e, &name); err != nil {
						return creation{}, err
					}
				}
				if _, err := e.catalog.Collection(opts.Collection); err != nil {
					return creation{}, err
				}
				f := forms.NewIndexForm(opts.Collection)
				f.Name = name
				if err := opts.apply(f); err != nil {
					return creation{}, err
				}
				if err := f.Validate(); err != nil {
					return creation{}, err
				}
				if err := e.catalog.IndexAvailable(f.Collection, f.ResourceID()); err != nil {
					return creation{}, err
				}
				steps, err := f.Steps(e.blueprints)
				if err != nil {
					return creation{}, err
				}
				return creation{
					kind:       "index",
					resourceID: f.ResourceID(),
					steps:      steps,
					commit:     func() error { return e.catalog.AddIndex(catalog.IndexFromForm(f)) },
				}, nil
			})
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "collection name")
	cmd.Flags().StringVar(&opts.Retention, "retention", "indefinite", "data retention period")
	cmd.Flags().StringVar(&opts.HotStorage, "hot-storage", "24h", "hot storage retention period")
	return cmd
}

func (o *IndexOptions) ask(e *env, name *string) error {
	var cols []huh.Option[string]
	for _, c := range e.catalog.Collections() {
		cols = append(cols, huh.NewOption(c.Name, c.Name))
	}
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Collection").
				Options(cols...).
				Value(&o.Collection),
			huh.NewInput().
				Title("Index name").
				Placeholder(forms.DefaultIndexName).
				Validate(forms.ValidateIndexName).
				Value(name),
			huh.NewInput().
				Title("Data retention").
				Description(`"indefinite" or a period like 30d`).
				Value(&o.Retention),
			huh.NewInput().
				Title("Hot storage retention").
				Value(&o.HotStorage),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func (o *IndexOptions) apply(f *forms.IndexForm) error {
	if r := strings.TrimSpace(o.Retention); r != "" && r != "indefinite" {
		p, err := parsePeriod(r)
		if err != nil {
			return err
		}
		if err := f.Lifecycle.Select(forms.CustomRetention); err != nil {
			return err
		}
		f.Retention = p
	}
	p, err := parsePeriod(o.HotStorage)
	if err != nil {
		return err
	}
	f.HotStorage = p
	return nil
}

// parsePeriod reads "30d", "24h", "30 days" or "1 hour".
func parsePeriod(s string) (forms.Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return forms.Period{}, errors.Invalidf("retention period %q needs a number and a unit", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return forms.Period{}, errors.Invalidf("retention period %q: %v", s, err)
	}
	switch strings.TrimSpace(s[i:]) {
	case "h", "hour", "hours":
		return forms.Period{Value: n, Unit: forms.Hours}, nil
	case "d", "day", "days":
		return forms.Period{Value: n, Unit: forms.Days}, nil
	}
	return forms.Period{}, errors.Invalidf("retention period %q: unit must be hours or days", s)
}

// huhOptions converts form tiles to huh options keyed by a string value.
func huhOptions[T comparable](opts []forms.Option[T], key func(T) string) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		if o.Disabled {
			continue
		}
		out = append(out, huh.NewOption(o.Label, key(o.Value)))
	}
	return out
}
