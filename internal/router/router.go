// Package router maps console screens to hash routes, comment scopes and
// breadcrumbs.
package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// View is a console screen.
type View int

const (
	Collections View = iota
	CreateCollection
	CreateCollectionV1
	CollectionDetails
	CollectionGroups
	CreateCollectionGroup
	CollectionGroupDetails
	CreateIndex
	IndexDetails
)

type viewInfo struct {
	hash   string
	screen string
	title  string
}

var views = map[View]viewInfo{
	Collections:            {"#/collections", "Collections", "Collections"},
	CreateCollection:       {"#/collections/create", "Create Collection", "Create collection"},
	CreateCollectionV1:     {"#/collections/create-v1", "Create Collection V1", "Create collection"},
	CollectionDetails:      {"#/collection-details", "Collection Details", "Collection details"},
	CollectionGroups:       {"#/collection-groups", "Collection Groups", "Collection groups"},
	CreateCollectionGroup:  {"#/create-collection-group", "Create Collection Group", "Create collection group"},
	CollectionGroupDetails: {"#/collection-group-details", "Collection Group Details", "Collection group details"},
	CreateIndex:            {"#/create-index", "Create Index", "Create vector index"},
	IndexDetails:           {"#/index-details", "Index Details", "Index details"},
}

// Views lists every view in declaration order.
func Views() []View {
	return []View{
		Collections, CreateCollection, CreateCollectionV1, CollectionDetails,
		CollectionGroups, CreateCollectionGroup, CollectionGroupDetails,
		CreateIndex, IndexDetails,
	}
}

// String returns the route hash without parameters.
func (v View) String() string {
	if vi, ok := views[v]; ok {
		return vi.hash
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ScreenName scopes the comments left on the view.
func (v View) ScreenName() string { return views[v].screen }

// Title is the page heading.
func (v View) Title() string { return views[v].title }

// Route is a view plus the resource it shows.
type Route struct {
	View       View
	Collection string
	Group      string
	Index      string
}

// Hash renders the route, e.g. "#/index-details?collection=awd2718&index=test".
func (r Route) Hash() string {
	q := url.Values{}
	if r.Collection != "" {
		q.Set("collection", r.Collection)
	}
	if r.Group != "" {
		q.Set("group", r.Group)
	}
	if r.Index != "" {
		q.Set("index", r.Index)
	}
	h := r.View.String()
	if len(q) > 0 {
		h += "?" + q.Encode()
	}
	return h
}

// Parse reads a hash route. A leading "#" is optional and an empty hash is
// the collections list.
func Parse(hash string) (Route, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" || hash == "#" || hash == "#/" {
		return Route{View: Collections}, nil
	}
	if !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}
	path, rawQuery, _ := strings.Cut(hash, "?")
	for v, vi := range views {
		if vi.hash != path {
			continue
		}
		q, err := url.ParseQuery(rawQuery)
		if err != nil {
			return Route{}, errors.Invalidf("route %q: %v", hash, err)
		}
		return Route{
			View:       v,
			Collection: q.Get("collection"),
			Group:      q.Get("group"),
			Index:      q.Get("index"),
		}, nil
	}
	return Route{}, fmt.Errorf("route %q: %w", hash, errors.ErrNotFound)
}

// Crumb is one breadcrumb.
type Crumb struct {
	Text string
	Hash string
}

const serviceName = "Amazon OpenSearch Service"

// Breadcrumbs returns the trail shown above the route's page.
func (r Route) Breadcrumbs() []Crumb {
	root := Crumb{Text: serviceName, Hash: "#"}
	collections := Crumb{Text: "Serverless: Collections", Hash: Collections.String()}
	groups := Crumb{Text: "Collection groups", Hash: CollectionGroups.String()}
	collection := Crumb{Text: or(r.Collection, "Collection details"), Hash: Route{View: CollectionDetails, Collection: r.Collection}.Hash()}

	switch r.View {
	case Collections:
		return []Crumb{root, collections}
	case CreateCollection, CreateCollectionV1:
		return []Crumb{root, collections, {Text: "Create collection", Hash: r.View.String()}}
	case CollectionDetails:
		return []Crumb{root, collections, collection}
	case CollectionGroups:
		return []Crumb{root, groups}
	case CreateCollectionGroup:
		return []Crumb{root, groups, {Text: "Create collection group", Hash: r.View.String()}}
	case CollectionGroupDetails:
		return []Crumb{root, groups, {Text: or(r.Group, "Collection group details"), Hash: r.Hash()}}
	case CreateIndex:
		return []Crumb{root, collections, collection, {Text: "Create vector index", Hash: r.Hash()}}
	case IndexDetails:
		return []Crumb{root, collections, collection, {Text: or(r.Index, "Index details"), Hash: r.Hash()}}
	default:
		return []Crumb{root}
	}
}

// Trail joins the breadcrumb texts with " > ".
func (r Route) Trail() string {
	crumbs := r.Breadcrumbs()
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		parts[i] = c.Text
	}
	return strings.Join(parts, " > ")
}

// Up returns the route a cancel or back action leads to.
func (r Route) Up() Route {
	switch r.View {
	case CreateCollection, CreateCollectionV1, CollectionDetails:
		return Route{View: Collections}
	case CreateCollectionGroup, CollectionGroupDetails:
		return Route{View: CollectionGroups}
	case CreateIndex, IndexDetails:
		return Route{View: CollectionDetails, Collection: r.Collection}
	default:
		return r
	}
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
