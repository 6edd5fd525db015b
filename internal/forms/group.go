package forms

import (
	"strings"

	"github.com/chazuruo/aoss-console/internal/workflows"
)

// CollectionGroupForm is the create collection group screen.
type CollectionGroupForm struct {
	Name        string
	Description string
	Version     Selection[Version]
	// Deployment applies to Serverless v1 groups only.
	Deployment Selection[DeploymentType]
	Capacity   CapacityPlan
}

// NewCollectionGroupForm returns a Serverless v2 group with default capacity.
func NewCollectionGroupForm() *CollectionGroupForm {
	return &CollectionGroupForm{
		Version:    NewSelection(V2, VersionOptions()...),
		Deployment: NewSelection(Redundant, DeploymentOptions()...),
		Capacity:   DefaultCapacity(),
	}
}

// ResourceID is the entered name or the generated default.
func (f *CollectionGroupForm) ResourceID() string { return orDefault(f.Name, DefaultGroupName) }

// Validate checks the name and capacity bounds.
func (f *CollectionGroupForm) Validate() error {
	if err := ValidateGroupName(strings.TrimSpace(f.Name)); err != nil {
		return err
	}
	return f.Capacity.Validate(GroupCapacityOptions)
}

// Steps derives the workflow step labels.
func (f *CollectionGroupForm) Steps(set *workflows.Set) ([]string, error) {
	return set.Steps(workflows.KindCollectionGroup, "", nil)
}

// Summary lists the group's settings for review before creation.
func (f *CollectionGroupForm) Summary() []Row {
	rows := []Row{
		{Configuration: "Collection group name", Value: f.ResourceID()},
		{Configuration: "Serverless version", Value: f.Version.SelectedOption().Label},
	}
	if f.Version.Selected() == V1 {
		rows = append(rows, Row{Configuration: "Deployment type", Value: f.Deployment.SelectedOption().Label})
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		rows = append(rows, Row{Configuration: "Description", Value: d, Editable: true})
	}
	rows = append(rows, Row{Configuration: "Capacity", Value: "OCUs", Editable: true, Section: true})
	return append(rows, f.Capacity.Rows(true)...)
}
