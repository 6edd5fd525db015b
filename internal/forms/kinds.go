package forms

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CollectionType is the workload a collection is tuned for.
type CollectionType string

const (
	TimeSeries   CollectionType = "timeseries"
	Search       CollectionType = "search"
	VectorSearch CollectionType = "vectorsearch"
)

var titleCase = cases.Title(language.English)

// DisplayName renders the type as list views show it, e.g. "Vectorsearch".
func (t CollectionType) DisplayName() string { return titleCase.String(string(t)) }

// ParseCollectionType accepts either the value or its display name.
func ParseCollectionType(s string) (CollectionType, bool) {
	for _, o := range CollectionTypeOptions() {
		if string(o.Value) == s || o.Value.DisplayName() == s || o.Label == s {
			return o.Value, true
		}
	}
	return "", false
}

// CollectionTypeOptions are the collection type tiles.
func CollectionTypeOptions() []Option[CollectionType] {
	return []Option[CollectionType]{
		{Value: TimeSeries, Label: "Time series", Description: "Log analytics, real-time application monitoring and observability."},
		{Value: Search, Label: "Search", Description: "Full-text search powering applications in your internal networks and internet-facing applications."},
		{Value: VectorSearch, Label: "Vector search", Description: "Semantic search on vector embeddings, with support for filtering and hybrid queries."},
	}
}

// Version is a Serverless generation.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// DisplayName renders "Serverless v2".
func (v Version) DisplayName() string { return "Serverless " + string(v) }

// VersionOptions are the Serverless version tiles.
func VersionOptions() []Option[Version] {
	return []Option[Version]{
		{Value: V1, Label: "Serverless V1", Description: "Scales in 2-30 minutes with minimum capacity requirements."},
		{Value: V2, Label: "Serverless V2", Description: "Instant scaling in seconds and scales to zero when idle."},
	}
}

// DeploymentType controls standby replicas. It applies to Serverless v1 only.
type DeploymentType string

const (
	Redundant    DeploymentType = "standard"
	NonRedundant DeploymentType = "non-redundant"
)

// DeploymentOptions are the deployment type tiles.
func DeploymentOptions() []Option[DeploymentType] {
	return []Option[DeploymentType]{
		{Value: Redundant, Label: "Enable redundancy (active-standby)", Description: "Recommended for production workloads."},
		{Value: NonRedundant, Label: "Disable redundancy", Description: "Lower cost, reduced availability on infrastructure failure."},
	}
}
