package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		hash string
		want Route
	}{
		{"", Route{View: Collections}},
		{"#/", Route{View: Collections}},
		{"#/collections", Route{View: Collections}},
		{"/collections/create", Route{View: CreateCollection}},
		{"#/collections/create-v1", Route{View: CreateCollectionV1}},
		{"#/collection-details?collection=awd2718", Route{View: CollectionDetails, Collection: "awd2718"}},
		{"#/collection-group-details?group=test", Route{View: CollectionGroupDetails, Group: "test"}},
		{"#/index-details?collection=awd2718&index=test", Route{View: IndexDetails, Collection: "awd2718", Index: "test"}},
	}
	for _, tt := range tests {
		t.Run(tt.hash, func(t *testing.T) {
			got, err := Parse(tt.hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("#/domains")
	assert.True(t, errors.IsNotFound(err))
}

func TestHash_RoundTrip(t *testing.T) {
	for _, v := range Views() {
		r := Route{View: v, Collection: "awd2718", Index: "logs idx"}
		got, err := Parse(r.Hash())
		require.NoError(t, err, r.Hash())
		assert.Equal(t, r, got)
	}
	assert.Equal(t, "#/create-collection-group", Route{View: CreateCollectionGroup}.Hash())
}

func TestScreenName(t *testing.T) {
	assert.Equal(t, "Create Collection Group", CreateCollectionGroup.ScreenName())
	assert.Equal(t, "Collections", Collections.ScreenName())

	seen := map[string]bool{}
	for _, v := range Views() {
		name := v.ScreenName()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate screen name %q", name)
		seen[name] = true
	}
}

func TestBreadcrumbs(t *testing.T) {
	assert.Equal(t, "Amazon OpenSearch Service > Collection groups > Create collection group",
		Route{View: CreateCollectionGroup}.Trail())
	assert.Equal(t, "Amazon OpenSearch Service > Serverless: Collections > awd2718 > Create vector index",
		Route{View: CreateIndex, Collection: "awd2718"}.Trail())

	crumbs := Route{View: IndexDetails, Collection: "awd2718", Index: "test"}.Breadcrumbs()
	require.Len(t, crumbs, 4)
	assert.Equal(t, "#/collection-details?collection=awd2718", crumbs[2].Hash)
}

func TestUp(t *testing.T) {
	assert.Equal(t, Route{View: Collections}, Route{View: CreateCollection}.Up())
	assert.Equal(t, Route{View: CollectionGroups}, Route{View: CreateCollectionGroup}.Up())
	assert.Equal(t, Route{View: CollectionDetails, Collection: "c"}, Route{View: CreateIndex, Collection: "c"}.Up())
	assert.Equal(t, Route{View: Collections}, Route{View: Collections}.Up())
}
