package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

var presets = []GroupPreset{
	{Name: "serverlessV2_27121", Capacity: CapacityPlan{MinIndexing: 0, MaxIndexing: 96, MinSearch: 0, MaxSearch: 96}},
	{Name: "serverlessV2_27122", Capacity: CapacityPlan{MinIndexing: 0, MaxIndexing: 48, MinSearch: 0, MaxSearch: 48}},
}

func findRow(t *testing.T, rows []Row, name string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Configuration == name {
			return r
		}
	}
	t.Fatalf("no row %q", name)
	return Row{}
}

func TestEasyCreate_DefaultSettings(t *testing.T) {
	f := NewCollectionForm(presets)
	require.Equal(t, MethodEasy, f.MethodKind())
	require.NoError(t, f.Easy().Group.Select("serverlessV2_27121"))

	rows := f.Easy().DefaultSettings()

	assert.Equal(t, "serverlessV2_27121", findRow(t, rows, "Collection group name").Value)

	minRow := findRow(t, rows, "Minimum indexing capacity")
	assert.Equal(t, "0 OCUs", minRow.Value)
	assert.Equal(t, "Yes", minRow.EditableText())

	maxRow := findRow(t, rows, "Maximum indexing capacity")
	assert.Equal(t, "96 OCUs (576 GB RAM)", maxRow.Value)
	assert.Equal(t, "Yes", maxRow.EditableText())
	assert.Equal(t, "Maximum indexing capacity: 96 OCUs (576 GB RAM) (Editable: Yes)", maxRow.String())

	for _, name := range []string{"Minimum search capacity", "Maximum search capacity"} {
		assert.True(t, findRow(t, rows, name).Editable, name)
	}
	assert.Equal(t, "No", findRow(t, rows, "Encryption key").EditableText())

	require.NoError(t, f.Easy().Group.Select("serverlessV2_27122"))
	rows = f.Easy().DefaultSettings()
	assert.Equal(t, "48 OCUs (288 GB RAM)", findRow(t, rows, "Maximum search capacity").Value)
}

func TestSelection(t *testing.T) {
	s := NewSelection("b",
		Option[string]{Value: "a", Label: "A"},
		Option[string]{Value: "b", Label: "B"},
		Option[string]{Value: "c", Label: "C", Disabled: true},
	)
	assert.Equal(t, "b", s.Selected())
	assert.Equal(t, 1, s.Index())

	err := s.Select("z")
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, "b", s.Selected(), "rejected value keeps previous choice")

	err = s.Select("c")
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, "b", s.Selected())

	s.Next()
	assert.Equal(t, "a", s.Selected(), "disabled tile skipped")
	s.Prev()
	assert.Equal(t, "b", s.Selected())

	assert.Panics(t, func() { NewSelection("x", Option[string]{Value: "a"}) })
}

func TestOCU(t *testing.T) {
	tests := []struct {
		ocu   OCU
		str   string
		label string
	}{
		{NoMinimum, "0 OCUs", "-"},
		{1, "1 OCUs (6 GB RAM)", "1"},
		{48, "48 OCUs (288 GB RAM)", "48"},
		{96, "96 OCUs (576 GB RAM)", "96"},
	}
	for _, tt := range tests {
		if got := tt.ocu.String(); got != tt.str {
			t.Errorf("OCU(%d).String() = %q, want %q", int(tt.ocu), got, tt.str)
		}
		if got := tt.ocu.Label(); got != tt.label {
			t.Errorf("OCU(%d).Label() = %q, want %q", int(tt.ocu), got, tt.label)
		}
		parsed, err := ParseOCU(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.ocu, parsed)
	}

	_, err := ParseOCU("lots")
	assert.True(t, errors.IsInvalid(err))

	opts := CapacityOptions(GroupCapacityOptions, true)
	assert.Equal(t, "-", opts[0].Label)
	assert.Equal(t, "12 GB RAM", opts[1].Description)
	assert.Equal(t, "- / 96 OCUs", Range(NoMinimum, 96))
}

func TestCapacityPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    CapacityPlan
		wantErr string
	}{
		{"defaults", DefaultCapacity(), ""},
		{"min over max", CapacityPlan{MinIndexing: 64, MaxIndexing: 32, MaxSearch: 96}, "minimum indexing capacity exceeds"},
		{"search min over max", CapacityPlan{MaxIndexing: 96, MinSearch: 96, MaxSearch: 48}, "minimum search capacity exceeds"},
		{"disallowed value", CapacityPlan{MaxIndexing: 80, MaxSearch: 96}, "maximum indexing capacity 80"},
		{"max unset", CapacityPlan{MaxSearch: 96}, "maximum indexing capacity 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate(GroupCapacityOptions)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		input    string
		ok       bool
	}{
		{"collection ok", ValidateCollectionName, "prod-logs", true},
		{"collection blank", ValidateCollectionName, "", true},
		{"collection uppercase", ValidateCollectionName, "Prod", false},
		{"collection leading digit", ValidateCollectionName, "1abc", false},
		{"collection too short", ValidateCollectionName, "ab", false},
		{"collection too long", ValidateCollectionName, "a" + strings.Repeat("b", 32), false},
		{"group underscore", ValidateGroupName, "serverlessV2_27121", true},
		{"group space", ValidateGroupName, "my group", false},
		{"index ok", ValidateIndexName, "vector_idx-1", true},
		{"index dot", ValidateIndexName, "logs.2025", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsInvalid(err))
			}
		})
	}
}

func TestCollectionForm_Steps(t *testing.T) {
	set := workflows.Default()
	f := NewCollectionForm(presets)

	steps, err := f.Steps(set)
	require.NoError(t, err)
	assert.Equal(t, []string{"Creating collection"}, steps)

	require.NoError(t, f.SetMethod(MethodStandard))
	std := f.Standard()
	std.Workspace = Existing{Name: "workspace-prod"}
	steps, err = f.Steps(set)
	require.NoError(t, err)
	assert.Equal(t, []string{"Creating collection group", "Creating OpenSearch application", "Creating collection"}, steps)

	std.Group = Existing{Name: "production-group"}
	std.DataAccess = New{Name: "policy-1"}
	steps, err = f.Steps(set)
	require.NoError(t, err)
	assert.Equal(t, []string{"Creating OpenSearch application", "Creating data access policy", "Creating collection"}, steps)

	// Switching back keeps the easy create entries
	f.Easy().ApplicationName = "my-app"
	require.NoError(t, f.SetMethod(MethodEasy))
	require.NoError(t, f.SetMethod(MethodStandard))
	require.NoError(t, f.SetMethod(MethodEasy))
	assert.Equal(t, "my-app", f.Easy().ApplicationName)

	assert.True(t, errors.IsInvalid(f.SetMethod("quick-create")))
}

func TestCollectionForm_Validate(t *testing.T) {
	f := NewCollectionForm(presets)
	assert.NoError(t, f.Validate())
	assert.Equal(t, DefaultCollectionName, f.ResourceID())

	f.Name = "  logs-2025 "
	assert.Equal(t, "logs-2025", f.ResourceID())

	f.Name = "Bad Name"
	assert.True(t, errors.IsInvalid(f.Validate()))

	f.Name = "logs"
	require.NoError(t, f.SetMethod(MethodStandard))
	f.Standard().Encryption = CustomerKey{ARN: "not-an-arn"}
	assert.True(t, errors.IsInvalid(f.Validate()))

	f.Standard().Encryption = CustomerKey{ARN: "arn:aws:kms:us-east-1:123456789012:key/abc"}
	assert.NoError(t, f.Validate())

	require.NoError(t, f.Standard().Network.Type.Select(AccessVPC))
	assert.True(t, errors.IsInvalid(f.Validate()))
	f.Standard().Network.VPCEndpoints = []string{"vpce-0123"}
	assert.NoError(t, f.Validate())

	f.Standard().Group = NewGroup{Name: "g1", Capacity: DefaultCapacity()}
	assert.True(t, errors.IsInvalid(f.Validate()), "group name too short")
}

func TestCollectionV1Form(t *testing.T) {
	f := NewCollectionV1Form()
	assert.Equal(t, DefaultCollectionV1Name, f.ResourceID())
	assert.True(t, f.Redundancy)
	assert.Equal(t, SecurityEasy, f.Security.Selected())

	steps, err := f.Steps(workflows.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"Creating encryption policy", "Creating network policy", "Creating collection"}, steps)
}

func TestCollectionGroupForm(t *testing.T) {
	f := NewCollectionGroupForm()
	assert.Equal(t, DefaultGroupName, f.ResourceID())
	assert.NoError(t, f.Validate())

	rows := f.Summary()
	assert.Equal(t, "Serverless V2", findRow(t, rows, "Serverless version").Value)
	for _, r := range rows {
		assert.NotEqual(t, "Deployment type", r.Configuration, "deployment only shown for v1")
	}

	require.NoError(t, f.Version.Select(V1))
	assert.Equal(t, "Enable redundancy (active-standby)", findRow(t, f.Summary(), "Deployment type").Value)

	f.Capacity.MinSearch = 64
	f.Capacity.MaxSearch = 32
	assert.True(t, errors.IsInvalid(f.Validate()))

	steps, err := f.Steps(workflows.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"Creating collection group"}, steps)
}

func TestIndexForm(t *testing.T) {
	f := NewIndexForm("awd2718")
	assert.Equal(t, DefaultIndexName, f.ResourceID())
	assert.Equal(t, IndefiniteRetention, f.RetentionText())
	assert.Equal(t, "24 hours", f.HotStorage.String())
	assert.NoError(t, f.Validate())

	require.NoError(t, f.Lifecycle.Select(CustomRetention))
	f.Retention = Period{Value: 7, Unit: Days}
	assert.Equal(t, "7 days", f.RetentionText())
	assert.NoError(t, f.Validate())

	f.Retention.Value = 0
	assert.True(t, errors.IsInvalid(f.Validate()))

	f.Retention.Value = 7
	f.HotStorage.Unit = "weeks"
	assert.True(t, errors.IsInvalid(f.Validate()))

	f.HotStorage.Unit = Hours
	f.Collection = ""
	assert.True(t, errors.IsInvalid(f.Validate()))
}

func TestCollectionType(t *testing.T) {
	assert.Equal(t, "Vectorsearch", VectorSearch.DisplayName())
	assert.Equal(t, "Timeseries", TimeSeries.DisplayName())
	assert.Equal(t, "Serverless v2", V2.DisplayName())

	for _, in := range []string{"vectorsearch", "Vectorsearch", "Vector search"} {
		got, ok := ParseCollectionType(in)
		assert.True(t, ok, in)
		assert.Equal(t, VectorSearch, got)
	}
	_, ok := ParseCollectionType("graph")
	assert.False(t, ok)
}
