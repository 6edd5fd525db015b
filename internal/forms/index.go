package forms

import (
	"fmt"
	"strings"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// Lifecycle is how long an index keeps data.
type Lifecycle string

const (
	KeepIndefinitely Lifecycle = "indefinite"
	CustomRetention  Lifecycle = "custom"
)

// IndefiniteRetention is the retention text for KeepIndefinitely.
const IndefiniteRetention = "Keep data indefinitely (Never delete)"

// Unit is a retention period unit.
type Unit string

const (
	Hours Unit = "hours"
	Days  Unit = "days"
)

// Period is a retention length such as "24 hours".
type Period struct {
	Value int
	Unit  Unit
}

func (p Period) String() string { return fmt.Sprintf("%d %s", p.Value, p.Unit) }

func (p Period) validate(what string) error {
	if p.Value <= 0 {
		return errors.Invalidf("%s must be a positive number", what)
	}
	if p.Unit != Hours && p.Unit != Days {
		return errors.Invalidf("%s unit %q must be hours or days", what, p.Unit)
	}
	return nil
}

// IndexForm is the create index screen.
type IndexForm struct {
	Collection string
	Name       string
	Lifecycle  Selection[Lifecycle]
	Retention  Period
	HotStorage Period
}

// NewIndexForm returns an index on collection that keeps data indefinitely
// with 24 hours of hot storage.
func NewIndexForm(collection string) *IndexForm {
	return &IndexForm{
		Collection: collection,
		Lifecycle: NewSelection(KeepIndefinitely,
			Option[Lifecycle]{Value: KeepIndefinitely, Label: IndefiniteRetention},
			Option[Lifecycle]{Value: CustomRetention, Label: "Set custom retention period"},
		),
		Retention:  Period{Value: 30, Unit: Days},
		HotStorage: Period{Value: 24, Unit: Hours},
	}
}

// ResourceID is the entered name or the generated default.
func (f *IndexForm) ResourceID() string { return orDefault(f.Name, DefaultIndexName) }

// RetentionText renders the data retention setting.
func (f *IndexForm) RetentionText() string {
	if f.Lifecycle.Selected() == KeepIndefinitely {
		return IndefiniteRetention
	}
	return f.Retention.String()
}

// Validate checks the name and retention periods.
func (f *IndexForm) Validate() error {
	if strings.TrimSpace(f.Collection) == "" {
		return errors.Invalidf("collection cannot be empty")
	}
	if err := ValidateIndexName(strings.TrimSpace(f.Name)); err != nil {
		return err
	}
	if f.Lifecycle.Selected() == CustomRetention {
		if err := f.Retention.validate("data retention"); err != nil {
			return err
		}
	}
	return f.HotStorage.validate("hot storage retention")
}

// Steps derives the workflow step labels.
func (f *IndexForm) Steps(set *workflows.Set) ([]string, error) {
	return set.Steps(workflows.KindIndex, "", nil)
}
