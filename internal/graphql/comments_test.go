package graphql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/comments"
	"github.com/chazuruo/aoss-console/internal/kv"
)

// fakeAppSync serves the comment operations from memory.
type fakeAppSync struct {
	mu       sync.Mutex
	items    []comments.Comment
	pageSize int
	requests []Request
}

func (f *fakeAppSync) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	raw, _ := json.Marshal(req.Variables)
	var vars struct {
		Filter struct {
			ScreenName struct {
				Eq string `json:"eq"`
			} `json:"screenname"`
		} `json:"filter"`
		NextToken string `json:"nextToken"`
	}
	_ = json.Unmarshal(raw, &vars)
	var input struct {
		Input comments.Comment `json:"input"`
	}
	_ = json.Unmarshal(raw, &input)

	var data any
	switch req.OperationName {
	case "ListComments":
		var matched []comments.Comment
		for _, c := range f.items {
			if c.ScreenName == vars.Filter.ScreenName.Eq {
				matched = append(matched, c)
			}
		}
		start := 0
		if vars.NextToken != "" {
			_ = json.Unmarshal([]byte(vars.NextToken), &start)
		}
		end := min(start+f.pageSize, len(matched))
		var next *string
		if end < len(matched) {
			tok, _ := json.Marshal(end)
			s := string(tok)
			next = &s
		}
		data = map[string]any{"listComments": map[string]any{"items": matched[start:end], "nextToken": next}}
	case "CreateComment":
		f.items = append(f.items, input.Input)
		data = map[string]any{"createComment": input.Input}
	case "UpdateComment":
		for i, c := range f.items {
			if c.ScreenName == input.Input.ScreenName && c.Timestamp == input.Input.Timestamp {
				f.items[i].Text = input.Input.Text
				data = map[string]any{"updateComment": f.items[i]}
			}
		}
	case "DeleteComment":
		for i, c := range f.items {
			if c.ScreenName == input.Input.ScreenName && c.Timestamp == input.Input.Timestamp {
				f.items = append(f.items[:i], f.items[i+1:]...)
				break
			}
		}
		data = map[string]any{"deleteComment": input.Input}
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func TestCommentStore_CRUD(t *testing.T) {
	fake := &fakeAppSync{pageSize: 2}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store := NewCommentStore(NewClient(srv.URL))
	ctx := context.Background()

	x, y := 10, 20
	for _, ts := range []string{"2025-07-01T00:00:01.000Z", "2025-07-01T00:00:02.000Z", "2025-07-01T00:00:03.000Z"} {
		_, err := store.Create(ctx, comments.Comment{ScreenName: "Collections", Text: "note " + ts, Author: "User", Timestamp: ts, PinX: &x, PinY: &y})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, comments.Comment{ScreenName: "Indexes", Text: "elsewhere", Author: "User", Timestamp: "2025-07-01T00:00:04.000Z"})
	require.NoError(t, err)

	list, err := store.List(ctx, "Collections")
	require.NoError(t, err)
	require.Len(t, list, 3, "all pages followed")
	require.NotNil(t, list[0].PinX)
	assert.Equal(t, 10, *list[0].PinX)

	updated, err := store.Update(ctx, "Collections", "2025-07-01T00:00:02.000Z", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	require.NoError(t, store.Delete(ctx, "Collections", "2025-07-01T00:00:01.000Z"))
	list, err = store.List(ctx, "Collections")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	last := fake.requests[len(fake.requests)-1]
	assert.Equal(t, "ListComments", last.OperationName)
	assert.Contains(t, last.Query, "listComments(filter: $filter")
}

func TestCommentStore_WithController(t *testing.T) {
	fake := &fakeAppSync{pageSize: 50}
	srv := httptest.NewServer(fake)

	local := kv.NewMemory()
	ctx := context.Background()
	ctl := comments.NewController("Collection Details", NewCommentStore(NewClient(srv.URL)), local)

	_, err := ctl.Submit(ctx, "synced", nil)
	require.NoError(t, err)
	assert.Len(t, ctl.Load(ctx), 1)

	// Endpoint goes away: load falls back to the (empty) local list and new
	// comments land there.
	srv.Close()
	assert.Empty(t, ctl.Load(ctx))
	_, err = ctl.Submit(ctx, "offline", nil)
	require.NoError(t, err)

	reloaded := comments.NewController("Collection Details", NewCommentStore(NewClient(srv.URL)), local).Load(ctx)
	require.Len(t, reloaded, 1)
	assert.Equal(t, "offline", reloaded[0].Text)
}
