package catalog

import (
	"context"
	"fmt"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/kv"
)

// CreatedKey holds the resources created on top of the seed data.
const CreatedKey kv.Key = "catalog-created"

// Load returns the seeded catalog plus every resource previously saved to s.
func Load(ctx context.Context, s kv.Store) (*Catalog, error) {
	c := Seeded()
	f, ok, err := kv.GetJSON[File](ctx, s, CreatedKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return c, nil
	}
	if f.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: stored catalog schema_version %d", errors.ErrInvalid, f.SchemaVersion)
	}
	for _, g := range f.Groups {
		if err := c.AddGroup(g); err != nil && !errors.IsAlreadyExists(err) {
			return nil, err
		}
	}
	for _, col := range f.Collections {
		if err := c.AddCollection(col); err != nil && !errors.IsAlreadyExists(err) {
			return nil, err
		}
	}
	for _, idx := range f.Indexes {
		if err := c.AddIndex(idx); err != nil && !errors.IsAlreadyExists(err) {
			return nil, err
		}
	}
	return c, nil
}

// Save writes the resources created since seeding to s.
func (c *Catalog) Save(ctx context.Context, s kv.Store) error {
	return kv.PutJSON(ctx, s, CreatedKey, c.Created())
}

// Created returns the resources added since seeding.
func (c *Catalog) Created() File {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return File{
		SchemaVersion: SchemaVersion,
		Collections:   append([]Collection(nil), c.created.Collections...),
		Groups:        append([]Group(nil), c.created.Groups...),
		Indexes:       append([]Index(nil), c.created.Indexes...),
	}
}
