package forms

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// OCU is a count of OpenSearch Compute Units.
type OCU int

const (
	// NoMinimum leaves a capacity floor unset, letting the group scale to zero.
	NoMinimum OCU = 0
	// MaxOCU is the largest capacity offered.
	MaxOCU OCU = 96
	// GBPerOCU is the memory behind one OCU.
	GBPerOCU = 6
)

var (
	// CollectionCapacityOptions are the OCU values offered on collection forms.
	CollectionCapacityOptions = []OCU{1, 2, 4, 8, 16, 32, 48, 64, 80, 96}
	// GroupCapacityOptions are the OCU values offered on collection group forms.
	GroupCapacityOptions = []OCU{2, 4, 8, 16, 32, 48, 64, 96}
)

// RAM returns the memory in GB.
func (o OCU) RAM() int { return int(o) * GBPerOCU }

// String renders "96 OCUs (576 GB RAM)", or "0 OCUs" for no minimum.
func (o OCU) String() string {
	if o == NoMinimum {
		return "0 OCUs"
	}
	return fmt.Sprintf("%d OCUs (%d GB RAM)", int(o), o.RAM())
}

// Label is the selector text: "-" for no minimum, the number otherwise.
func (o OCU) Label() string {
	if o == NoMinimum {
		return "-"
	}
	return strconv.Itoa(int(o))
}

// ParseOCU parses a selector label. "-", "" and "0" mean no minimum.
func ParseOCU(s string) (OCU, error) {
	switch s {
	case "", "-", "0":
		return NoMinimum, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Invalidf("capacity %q is not a number of OCUs", s)
	}
	return OCU(n), nil
}

// CapacityOptions turns OCU values into selector tiles, led by a
// no-minimum tile when withNone is set.
func CapacityOptions(values []OCU, withNone bool) []Option[OCU] {
	out := make([]Option[OCU], 0, len(values)+1)
	if withNone {
		out = append(out, Option[OCU]{Value: NoMinimum, Label: NoMinimum.Label()})
	}
	for _, v := range values {
		out = append(out, Option[OCU]{Value: v, Label: v.Label(), Description: fmt.Sprintf("%d GB RAM", v.RAM())})
	}
	return out
}

// CapacityPlan bounds the indexing and search capacity of a collection group.
type CapacityPlan struct {
	MinIndexing OCU `yaml:"min_indexing" json:"minIndexing"`
	MaxIndexing OCU `yaml:"max_indexing" json:"maxIndexing"`
	MinSearch   OCU `yaml:"min_search" json:"minSearch"`
	MaxSearch   OCU `yaml:"max_search" json:"maxSearch"`
}

// DefaultCapacity has no minimums and the largest maximums.
func DefaultCapacity() CapacityPlan {
	return CapacityPlan{MinIndexing: NoMinimum, MaxIndexing: MaxOCU, MinSearch: NoMinimum, MaxSearch: MaxOCU}
}

// Validate checks each bound against allowed and that no minimum exceeds its
// maximum.
func (p CapacityPlan) Validate(allowed []OCU) error {
	bounds := []struct {
		name   string
		v      OCU
		noneOK bool
	}{
		{"minimum indexing capacity", p.MinIndexing, true},
		{"maximum indexing capacity", p.MaxIndexing, false},
		{"minimum search capacity", p.MinSearch, true},
		{"maximum search capacity", p.MaxSearch, false},
	}
	for _, b := range bounds {
		if b.v == NoMinimum && b.noneOK {
			continue
		}
		if !slices.Contains(allowed, b.v) {
			return errors.Invalidf("%s %d is not an allowed value", b.name, int(b.v))
		}
	}
	if p.MinIndexing > p.MaxIndexing {
		return errors.Invalidf("minimum indexing capacity exceeds maximum")
	}
	if p.MinSearch > p.MaxSearch {
		return errors.Invalidf("minimum search capacity exceeds maximum")
	}
	return nil
}

// Range renders the "- / 96 OCUs" bounds shown in group lists.
func Range(lo, hi OCU) string {
	return fmt.Sprintf("%s / %d OCUs", lo.Label(), int(hi))
}

// Rows returns the capacity rows of a settings summary.
func (p CapacityPlan) Rows(editable bool) []Row {
	return []Row{
		{Configuration: "Minimum indexing capacity", Value: p.MinIndexing.String(), Editable: editable, Indent: true},
		{Configuration: "Maximum indexing capacity", Value: p.MaxIndexing.String(), Editable: editable, Indent: true},
		{Configuration: "Minimum search capacity", Value: p.MinSearch.String(), Editable: editable, Indent: true},
		{Configuration: "Maximum search capacity", Value: p.MaxSearch.String(), Editable: editable, Indent: true},
	}
}
