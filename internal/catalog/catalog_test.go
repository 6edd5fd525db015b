package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/forms"
)

func TestSeeded(t *testing.T) {
	c := Seeded()

	cols := c.Collections()
	require.Len(t, cols, 24)
	assert.Equal(t, "awd2718", cols[0].Name)
	assert.Equal(t, StatusActive, cols[0].Status)
	assert.Equal(t, "OpenSearch UI", cols[0].Dashboard())
	assert.Equal(t, "October 30, 2025, 10:19 (UTC-07:00)", FormatDate(cols[0].Created))
	assert.Equal(t, "-", cols[0].DescriptionText())

	g, err := c.Group("serverlessV2_27122")
	require.NoError(t, err)
	assert.Equal(t, forms.OCU(48), g.Capacity.MaxIndexing)
	assert.Equal(t, "- / 48 OCUs", g.IndexingText())

	presets := c.GroupPresets()
	require.Len(t, presets, 3)
	assert.Equal(t, "serverlessV2_27121", presets[0].Name)

	assert.Equal(t, 2, c.GroupCollections("ml-group"))
	assert.Len(t, c.Indexes("awd2718"), 1)
}

// TestRun_FilterAndPaging covers the collection list scenario: 24 items at
// 20 per page, then a "vector" filter.
func TestRun_FilterAndPaging(t *testing.T) {
	cols := Seeded().Collections()

	q := Query{Page: 1, PageSize: 20}
	page := Run(cols, q)
	assert.Equal(t, 2, page.PagesCount)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, 24, page.Matches)
	assert.Equal(t, "24 matches", page.CountText())

	q.Page = 2
	page = Run(cols, q)
	assert.Len(t, page.Items, 4)

	q.SetFilter("VECTOR")
	assert.Equal(t, 1, q.Page, "filter change resets paging")
	page = Run(cols, q)

	var names []string
	for _, c := range page.Items {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"s3vectors-collection-175262", "s3vectors-collection-175263", "ml-vectors-collection"}, names)
	assert.Equal(t, 3, page.Matches)
	assert.Equal(t, 24, page.Total)
	assert.Equal(t, 1, page.PagesCount)
	assert.Equal(t, "3 matches", page.CountText())
	assert.Equal(t, "(3)", page.Counter())

	q.SetFilter("security logs")
	page = Run(cols, q)
	assert.Equal(t, "1 match", page.CountText())

	q.SetFilter("no-such-collection")
	page = Run(cols, q)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.PagesCount)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestRun_Sort(t *testing.T) {
	cols := Seeded().Collections()

	page := Run(cols, Query{SortField: SortName, PageSize: 100})
	assert.Equal(t, "ai-embeddings-collection", page.Items[0].Name)

	page = Run(cols, Query{SortField: SortCreated, Descending: true, PageSize: 100})
	assert.Equal(t, "awd2718", page.Items[0].Name)
	assert.Equal(t, "collection2", page.Items[len(page.Items)-1].Name)

	page = Run(cols, Query{Page: 9, PageSize: 20})
	assert.Equal(t, 2, page.CurrentPage, "page clamps to the last page")
}

func TestAdd(t *testing.T) {
	c := Seeded()
	fixed := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	f := forms.NewCollectionForm(c.GroupPresets())
	f.Name = "orders"
	require.NoError(t, f.Type.Select(forms.Search))
	col := CollectionFromForm(f)
	require.NoError(t, c.AddCollection(col))

	got, err := c.Collection("orders")
	require.NoError(t, err)
	assert.Equal(t, forms.Search, got.Type)
	assert.Equal(t, "serverlessV2_27121", got.Group)
	assert.Equal(t, fixed, got.Created)
	assert.Equal(t, StatusActive, got.Status)

	err = c.AddCollection(col)
	assert.True(t, errors.IsAlreadyExists(err))

	_, err = c.Collection("missing")
	assert.True(t, errors.IsNotFound(err))

	idx := IndexFromForm(forms.NewIndexForm("orders"))
	require.NoError(t, c.AddIndex(idx))
	got2, err := c.Index("orders", forms.DefaultIndexName)
	require.NoError(t, err)
	assert.Equal(t, forms.IndefiniteRetention, got2.DataRetention)
	assert.Equal(t, "24 hours", got2.HotStorageRetention)

	gf := forms.NewCollectionGroupForm()
	gf.Name = "team-a"
	require.NoError(t, c.AddGroup(GroupFromForm(gf)))
	_, err = c.Group("team-a")
	assert.NoError(t, err)
}

func TestCatalog_Available(t *testing.T) {
	c := Seeded()

	err := c.GroupAvailable("serverlessV2_27121")
	assert.True(t, errors.IsAlreadyExists(err))
	assert.NoError(t, c.GroupAvailable("team-b"))

	err = c.CollectionAvailable("awstest")
	assert.True(t, errors.IsAlreadyExists(err))
	assert.NoError(t, c.CollectionAvailable("fresh-one"))

	require.NoError(t, c.AddIndex(Index{Collection: "awstest", Name: "logs"}))
	assert.True(t, errors.IsAlreadyExists(c.IndexAvailable("awstest", "logs")))
	assert.NoError(t, c.IndexAvailable("awd2718", "logs"), "index names are scoped to their collection")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("schema_version: 2\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("collections: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("schema_version: 1\ncollections:\n  - name: a\n  - name: a\n"))
	assert.True(t, errors.IsAlreadyExists(err))
}
