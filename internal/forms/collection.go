package forms

import (
	"strings"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// Defaults carried over from the console's sample environment.
const (
	DefaultApplicationName = "opensearchui-1769533298515"
	DefaultWorkspaceName   = "workspace-1769533298515"
	DefaultPrincipal       = "arn:aws:iam::478031150999:role/Admin"
	DefaultPolicyName      = "easy-weffsc"
)

// DefaultPermissions are granted by a new data access policy.
var DefaultPermissions = []string{
	"aoss:CreateCollectionItems", "aoss:DeleteCollectionItems", "aoss:UpdateCollectionItems", "aoss:DescribeCollectionItems",
	"aoss:CreateIndex", "aoss:DeleteIndex", "aoss:UpdateIndex", "aoss:DescribeIndex",
	"aoss:ReadDocument", "aoss:WriteDocument",
	"aoss:DescribeMLResource", "aoss:CreateMLResource", "aoss:UpdateMLResource", "aoss:DeleteMLResource", "aoss:ExecuteMLResource",
}

// Workflow step conditions understood by the collection blueprints.
const (
	CondNewGroup       = "new-group"
	CondNewApplication = "new-application"
	CondNewWorkspace   = "new-workspace"
	CondNewPolicy      = "new-policy"
)

// GroupPreset is an existing collection group offered by easy create.
type GroupPreset struct {
	Name     string
	Capacity CapacityPlan
}

// Choice selects an existing resource or describes a new one.
type Choice interface {
	ResourceName() string
	IsNew() bool
}

// Existing refers to a resource that is already provisioned.
type Existing struct{ Name string }

func (e Existing) ResourceName() string { return e.Name }
func (Existing) IsNew() bool            { return false }

// New names a resource the workflow creates.
type New struct{ Name string }

func (n New) ResourceName() string { return n.Name }
func (New) IsNew() bool            { return true }

// NewGroup is a collection group created along with the collection.
type NewGroup struct {
	Name     string
	Capacity CapacityPlan
}

func (g NewGroup) ResourceName() string { return g.Name }
func (NewGroup) IsNew() bool            { return true }

// Encryption chooses the key protecting collection data.
type Encryption interface{ isEncryption() }

// AWSOwnedKey encrypts with a key AWS owns and manages.
type AWSOwnedKey struct{}

// CustomerKey encrypts with a customer managed KMS key.
type CustomerKey struct{ ARN string }

func (AWSOwnedKey) isEncryption() {}
func (CustomerKey) isEncryption() {}

// AccessType is how a collection endpoint is reached.
type AccessType string

const (
	AccessPublic AccessType = "public"
	AccessVPC    AccessType = "vpc"
)

// NetworkAccess is the network policy of a collection.
type NetworkAccess struct {
	Type                 Selection[AccessType]
	VPCEndpoints         []string
	ServicePrivateAccess bool
}

// DefaultNetworkAccess is public access.
func DefaultNetworkAccess() NetworkAccess {
	return NetworkAccess{Type: NewSelection(AccessPublic,
		Option[AccessType]{Value: AccessPublic, Label: "Public"},
		Option[AccessType]{Value: AccessVPC, Label: "VPC"},
	)}
}

func (n NetworkAccess) validate() error {
	if n.Type.Selected() == AccessVPC && len(n.VPCEndpoints) == 0 {
		return errors.Invalidf("VPC access requires at least one VPC endpoint")
	}
	return nil
}

// CreationMethod is how a collection's supporting resources are chosen:
// *EasyCreate or *StandardCreate.
type CreationMethod interface {
	// Variant names the workflow blueprint.
	Variant() string
	conditions() map[string]bool
	validate() error
}

// MethodKind identifies a creation method tile.
type MethodKind string

const (
	MethodEasy     MethodKind = "easy-create"
	MethodStandard MethodKind = "standard-create"
)

// EasyCreate places the collection in an existing group with default settings.
type EasyCreate struct {
	Group           Selection[string]
	ApplicationName string
	Workspace       string
	presets         []GroupPreset
}

// NewEasyCreate offers presets, selecting the first. It panics on an empty
// preset list.
func NewEasyCreate(presets []GroupPreset) *EasyCreate {
	opts := make([]Option[string], len(presets))
	for i, p := range presets {
		opts[i] = Option[string]{Value: p.Name, Label: p.Name}
	}
	var def string
	if len(presets) > 0 {
		def = presets[0].Name
	}
	return &EasyCreate{
		Group:           NewSelection(def, opts...),
		ApplicationName: DefaultApplicationName,
		Workspace:       DefaultWorkspaceName,
		presets:         presets,
	}
}

func (*EasyCreate) Variant() string { return string(MethodEasy) }

func (*EasyCreate) conditions() map[string]bool { return nil }

func (*EasyCreate) validate() error { return nil }

// SelectedGroup returns the preset behind the active group tile.
func (e *EasyCreate) SelectedGroup() GroupPreset {
	name := e.Group.Selected()
	for _, p := range e.presets {
		if p.Name == name {
			return p
		}
	}
	return GroupPreset{Name: name, Capacity: DefaultCapacity()}
}

// DefaultSettings lists what easy create will configure.
func (e *EasyCreate) DefaultSettings() []Row {
	g := e.SelectedGroup()
	rows := []Row{
		{Configuration: "Collection group settings", Value: "Select existing collection group", Editable: true, Section: true},
		{Configuration: "Collection group name", Value: g.Name, Indent: true},
	}
	rows = append(rows, g.Capacity.Rows(true)...)
	return append(rows,
		Row{Configuration: "Encryption key", Value: "AWS Owned", Section: true},
		Row{Configuration: "Network access", Value: "Public", Editable: true, Section: true},
		Row{Configuration: "OpenSearch application", Value: e.ApplicationName, Editable: true, Section: true},
		Row{Configuration: "Workspace", Value: e.Workspace, Editable: true, Indent: true},
		Row{Configuration: "Data access", Value: "New policy", Editable: true, Section: true},
		Row{Configuration: "Principals", Value: DefaultPrincipal, Editable: true, Indent: true},
		Row{Configuration: "Policy name", Value: DefaultPolicyName, Editable: true, Indent: true},
		Row{Configuration: "Permissions", Value: strings.Join(DefaultPermissions, ", "), Editable: true, Indent: true},
	)
}

// StandardCreate chooses every supporting resource explicitly.
type StandardCreate struct {
	Group       Choice
	Application Choice
	Workspace   Choice
	Encryption  Encryption
	Network     NetworkAccess
	DataAccess  Choice
}

// NewStandardCreate returns the standard create defaults: a new group,
// application and workspace, AWS owned encryption, public access and an
// existing data access policy.
func NewStandardCreate() *StandardCreate {
	return &StandardCreate{
		Group:       NewGroup{Name: "serverlessV2_27121", Capacity: DefaultCapacity()},
		Application: New{Name: DefaultApplicationName},
		Workspace:   New{Name: DefaultWorkspaceName},
		Encryption:  AWSOwnedKey{},
		Network:     DefaultNetworkAccess(),
		DataAccess:  Existing{Name: "data-access-policy-prod"},
	}
}

func (*StandardCreate) Variant() string { return string(MethodStandard) }

func (s *StandardCreate) conditions() map[string]bool {
	return map[string]bool{
		CondNewGroup:       isNew(s.Group),
		CondNewApplication: isNew(s.Application),
		CondNewWorkspace:   isNew(s.Workspace),
		CondNewPolicy:      isNew(s.DataAccess),
	}
}

func (s *StandardCreate) validate() error {
	if s.Group == nil || s.Group.ResourceName() == "" {
		return errors.Invalidf("a collection group is required")
	}
	if g, ok := s.Group.(NewGroup); ok {
		if err := ValidateGroupName(g.Name); err != nil {
			return err
		}
		if err := g.Capacity.Validate(CollectionCapacityOptions); err != nil {
			return err
		}
	}
	if k, ok := s.Encryption.(CustomerKey); ok && !strings.HasPrefix(k.ARN, "arn:") {
		return errors.Invalidf("KMS key %q must be an ARN", k.ARN)
	}
	named := []struct {
		what string
		c    Choice
	}{{"application", s.Application}, {"workspace", s.Workspace}, {"data access policy", s.DataAccess}}
	for _, n := range named {
		if n.c != nil && n.c.ResourceName() == "" {
			return errors.Invalidf("%s name cannot be empty", n.what)
		}
	}
	return s.Network.validate()
}

func isNew(c Choice) bool { return c != nil && c.IsNew() }

// CollectionForm is the create collection screen.
type CollectionForm struct {
	Name        string
	Description string
	Type        Selection[CollectionType]
	Method      CreationMethod

	easy     *EasyCreate
	standard *StandardCreate
}

// NewCollectionForm returns a time series collection using easy create.
func NewCollectionForm(presets []GroupPreset) *CollectionForm {
	f := &CollectionForm{
		Type:     NewSelection(TimeSeries, CollectionTypeOptions()...),
		easy:     NewEasyCreate(presets),
		standard: NewStandardCreate(),
	}
	f.Method = f.easy
	return f
}

// MethodOptions are the creation method tiles.
func MethodOptions() []Option[MethodKind] {
	return []Option[MethodKind]{
		{Value: MethodEasy, Label: "Easy create", Description: "Use recommended settings. You can change them after creation."},
		{Value: MethodStandard, Label: "Standard create", Description: "Set every configuration option, including group and application."},
	}
}

// SetMethod switches the creation method. Entries made under the other
// method are kept for when the user switches back.
func (f *CollectionForm) SetMethod(k MethodKind) error {
	switch k {
	case MethodEasy:
		f.Method = f.easy
	case MethodStandard:
		f.Method = f.standard
	default:
		return errors.Invalidf("unknown creation method %q", k)
	}
	return nil
}

// MethodKind returns the active creation method tile.
func (f *CollectionForm) MethodKind() MethodKind { return MethodKind(f.Method.Variant()) }

// Easy returns the easy create settings.
func (f *CollectionForm) Easy() *EasyCreate { return f.easy }

// Standard returns the standard create settings.
func (f *CollectionForm) Standard() *StandardCreate { return f.standard }

// ResourceID is the entered name or the generated default.
func (f *CollectionForm) ResourceID() string { return orDefault(f.Name, DefaultCollectionName) }

// Validate checks every field of the active method.
func (f *CollectionForm) Validate() error {
	if err := ValidateCollectionName(strings.TrimSpace(f.Name)); err != nil {
		return err
	}
	return f.Method.validate()
}

// Steps derives the workflow step labels.
func (f *CollectionForm) Steps(set *workflows.Set) ([]string, error) {
	return set.Steps(workflows.KindCollection, f.Method.Variant(), f.Method.conditions())
}

// SecurityMode is how a v1 collection's policies are configured.
type SecurityMode string

const (
	SecurityEasy     SecurityMode = "easy"
	SecurityStandard SecurityMode = "standard"
)

// CollectionV1Form is the Serverless v1 create wizard.
type CollectionV1Form struct {
	Name        string
	Description string
	Type        Selection[CollectionType]
	Redundancy  bool
	Security    Selection[SecurityMode]
}

// NewCollectionV1Form returns the wizard defaults.
func NewCollectionV1Form() *CollectionV1Form {
	return &CollectionV1Form{
		Type:       NewSelection(TimeSeries, CollectionTypeOptions()...),
		Redundancy: true,
		Security: NewSelection(SecurityEasy,
			Option[SecurityMode]{Value: SecurityEasy, Label: "Easy create", Description: "Default encryption, network and data access policies."},
			Option[SecurityMode]{Value: SecurityStandard, Label: "Standard create", Description: "Configure each policy yourself."},
		),
	}
}

// ResourceID is the entered name or the generated default.
func (f *CollectionV1Form) ResourceID() string { return orDefault(f.Name, DefaultCollectionV1Name) }

// Validate checks the name.
func (f *CollectionV1Form) Validate() error {
	return ValidateCollectionName(strings.TrimSpace(f.Name))
}

// Steps derives the workflow step labels.
func (f *CollectionV1Form) Steps(set *workflows.Set) ([]string, error) {
	return set.Steps(workflows.KindCollection, "v1", nil)
}
