// Package catalog holds the sample collections, collection groups and
// indexes the console lists, plus anything created during the session.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/forms"
)

// SchemaVersion is the current seed file schema version.
const SchemaVersion = 1

// DateLayout renders creation dates the way the console shows them.
const DateLayout = "January 2, 2006, 15:04 (UTC-07:00)"

// StatusActive is the status of every provisioned resource.
const StatusActive = "Active"

// Collection is an OpenSearch Serverless collection.
type Collection struct {
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Group       string               `yaml:"group,omitempty" json:"group,omitempty"`
	Status      string               `yaml:"status,omitempty" json:"status"`
	Type        forms.CollectionType `yaml:"type" json:"type"`
	Version     forms.Version        `yaml:"version" json:"version"`
	Created     time.Time            `yaml:"created" json:"created"`
}

// DescriptionText renders a missing description as "-".
func (c Collection) DescriptionText() string { return dash(c.Description) }

// GroupText renders a missing group as "-".
func (c Collection) GroupText() string { return dash(c.Group) }

// Dashboard names the UI that serves the collection.
func (c Collection) Dashboard() string {
	if c.Version == forms.V2 {
		return "OpenSearch UI"
	}
	return "Dashboard"
}

// Group is a collection group sharing a capacity pool.
type Group struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Version     forms.Version      `yaml:"version" json:"version"`
	Capacity    forms.CapacityPlan `yaml:"capacity" json:"capacity"`
	// EasyCreate offers the group as an easy create target.
	EasyCreate bool      `yaml:"easy_create,omitempty" json:"easyCreate,omitempty"`
	Created    time.Time `yaml:"created" json:"created"`
}

// IndexingText renders the indexing bounds as "- / 96 OCUs".
func (g Group) IndexingText() string { return forms.Range(g.Capacity.MinIndexing, g.Capacity.MaxIndexing) }

// SearchText renders the search bounds as "- / 96 OCUs".
func (g Group) SearchText() string { return forms.Range(g.Capacity.MinSearch, g.Capacity.MaxSearch) }

// Index is an index inside a collection.
type Index struct {
	Collection          string    `yaml:"collection" json:"collection"`
	Name                string    `yaml:"name" json:"name"`
	DataRetention       string    `yaml:"data_retention" json:"dataRetention"`
	HotStorageRetention string    `yaml:"hot_storage_retention" json:"hotStorageRetention"`
	SizeBytes           int64     `yaml:"size_bytes,omitempty" json:"size"`
	Documents           int64     `yaml:"documents,omitempty" json:"documentCount"`
	Created             time.Time `yaml:"created" json:"created"`
}

// File is the seed document.
type File struct {
	SchemaVersion int          `yaml:"schema_version" json:"schemaVersion"`
	Collections   []Collection `yaml:"collections" json:"collections,omitempty"`
	Groups        []Group      `yaml:"groups" json:"groups,omitempty"`
	Indexes       []Index      `yaml:"indexes" json:"indexes,omitempty"`
}

//go:embed seed.yaml
var seed []byte

// Catalog is the in-memory resource inventory. It is safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	collections []Collection
	groups      []Group
	indexes     []Index
	now         func() time.Time
	// created holds what was added after seeding.
	created File
}

// Seeded returns a catalog loaded with the built-in sample data.
func Seeded() *Catalog {
	c, err := Parse(seed)
	if err != nil {
		panic(fmt.Sprintf("embedded seed: %v", err))
	}
	return c
}

// Parse loads a catalog from a seed document.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed: %w", err)
	}
	if f.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported seed schema_version %d", f.SchemaVersion)
	}
	c := &Catalog{now: time.Now}
	for _, col := range f.Collections {
		if err := c.AddCollection(col); err != nil {
			return nil, err
		}
	}
	for _, g := range f.Groups {
		if err := c.AddGroup(g); err != nil {
			return nil, err
		}
	}
	for _, idx := range f.Indexes {
		if err := c.AddIndex(idx); err != nil {
			return nil, err
		}
	}
	c.created = File{SchemaVersion: SchemaVersion}
	return c, nil
}

// Collections returns every collection in seed order.
func (c *Catalog) Collections() []Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.collections)
}

// Groups returns every collection group.
func (c *Catalog) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.groups)
}

// Indexes returns the indexes of collection.
func (c *Catalog) Indexes(collection string) []Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Index
	for _, idx := range c.indexes {
		if idx.Collection == collection {
			out = append(out, idx)
		}
	}
	return out
}

// Collection looks up a collection by name.
func (c *Catalog) Collection(name string) (Collection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.collections, func(x Collection) bool { return x.Name == name })
	if i < 0 {
		return Collection{}, fmt.Errorf("collection %q: %w", name, errors.ErrNotFound)
	}
	return c.collections[i], nil
}

// Group looks up a collection group by name.
func (c *Catalog) Group(name string) (Group, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.groups, func(x Group) bool { return x.Name == name })
	if i < 0 {
		return Group{}, fmt.Errorf("collection group %q: %w", name, errors.ErrNotFound)
	}
	return c.groups[i], nil
}

// Index looks up an index by collection and name.
func (c *Catalog) Index(collection, name string) (Index, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.indexes, func(x Index) bool { return x.Collection == collection && x.Name == name })
	if i < 0 {
		return Index{}, fmt.Errorf("index %s/%s: %w", collection, name, errors.ErrNotFound)
	}
	return c.indexes[i], nil
}

// CollectionAvailable returns an ErrAlreadyExists error when name is taken.
func (c *Catalog) CollectionAvailable(name string) error {
	if _, err := c.Collection(name); err == nil {
		return fmt.Errorf("collection %q: %w", name, errors.ErrAlreadyExists)
	}
	return nil
}

// GroupAvailable returns an ErrAlreadyExists error when name is taken.
func (c *Catalog) GroupAvailable(name string) error {
	if _, err := c.Group(name); err == nil {
		return fmt.Errorf("collection group %q: %w", name, errors.ErrAlreadyExists)
	}
	return nil
}

// IndexAvailable returns an ErrAlreadyExists error when collection already
// has an index called name.
func (c *Catalog) IndexAvailable(collection, name string) error {
	if _, err := c.Index(collection, name); err == nil {
		return fmt.Errorf("index %s/%s: %w", collection, name, errors.ErrAlreadyExists)
	}
	return nil
}

// GroupCollections counts the collections assigned to group.
func (c *Catalog) GroupCollections(group string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, col := range c.collections {
		if col.Group == group {
			n++
		}
	}
	return n
}

// GroupPresets returns the groups offered by easy create.
func (c *Catalog) GroupPresets() []forms.GroupPreset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []forms.GroupPreset
	for _, g := range c.groups {
		if g.EasyCreate {
			out = append(out, forms.GroupPreset{Name: g.Name, Capacity: g.Capacity})
		}
	}
	return out
}

// AddCollection records a collection. Names are unique.
func (c *Catalog) AddCollection(col Collection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.ContainsFunc(c.collections, func(x Collection) bool { return x.Name == col.Name }) {
		return fmt.Errorf("collection %q: %w", col.Name, errors.ErrAlreadyExists)
	}
	if col.Status == "" {
		col.Status = StatusActive
	}
	if col.Created.IsZero() {
		col.Created = c.now()
	}
	c.collections = append(c.collections, col)
	c.created.Collections = append(c.created.Collections, col)
	return nil
}

// AddGroup records a collection group. Names are unique.
func (c *Catalog) AddGroup(g Group) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.ContainsFunc(c.groups, func(x Group) bool { return x.Name == g.Name }) {
		return fmt.Errorf("collection group %q: %w", g.Name, errors.ErrAlreadyExists)
	}
	if g.Created.IsZero() {
		g.Created = c.now()
	}
	c.groups = append(c.groups, g)
	c.created.Groups = append(c.created.Groups, g)
	return nil
}

// AddIndex records an index. Names are unique within a collection.
func (c *Catalog) AddIndex(idx Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.ContainsFunc(c.indexes, func(x Index) bool { return x.Collection == idx.Collection && x.Name == idx.Name }) {
		return fmt.Errorf("index %s/%s: %w", idx.Collection, idx.Name, errors.ErrAlreadyExists)
	}
	if idx.Created.IsZero() {
		idx.Created = c.now()
	}
	c.indexes = append(c.indexes, idx)
	c.created.Indexes = append(c.created.Indexes, idx)
	return nil
}

// CollectionFromForm builds the collection a completed create workflow
// produces.
func CollectionFromForm(f *forms.CollectionForm) Collection {
	col := Collection{
		Name:        f.ResourceID(),
		Description: f.Description,
		Type:        f.Type.Selected(),
		Version:     forms.V2,
	}
	switch m := f.Method.(type) {
	case *forms.EasyCreate:
		col.Group = m.Group.Selected()
	case *forms.StandardCreate:
		col.Group = m.Group.ResourceName()
	}
	return col
}

// CollectionFromV1Form builds a Serverless v1 collection.
func CollectionFromV1Form(f *forms.CollectionV1Form) Collection {
	return Collection{
		Name:        f.ResourceID(),
		Description: f.Description,
		Type:        f.Type.Selected(),
		Version:     forms.V1,
	}
}

// GroupFromForm builds the group a completed create workflow produces.
func GroupFromForm(f *forms.CollectionGroupForm) Group {
	return Group{
		Name:        f.ResourceID(),
		Description: f.Description,
		Version:     f.Version.Selected(),
		Capacity:    f.Capacity,
	}
}

// IndexFromForm builds the empty index a completed create workflow produces.
func IndexFromForm(f *forms.IndexForm) Index {
	return Index{
		Collection:          f.Collection,
		Name:                f.ResourceID(),
		DataRetention:       f.RetentionText(),
		HotStorageRetention: f.HotStorage.String(),
	}
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
