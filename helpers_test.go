package graw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Params url.Values
	Data   url.Values
	Files  map[string]string
}

// fakeRequestor serves canned JSON bodies keyed by method and path. Bodies
// registered for the same route are served in order and the last one repeats;
// an error body is returned as the request error.
type fakeRequestor struct {
	t         *testing.T
	readOnly  bool
	responses map[string][]any
	served    map[string]int
	errs      map[string]error
	requests  []recordedRequest
}

func newFakeRequestor(t *testing.T) *fakeRequestor {
	return &fakeRequestor{
		t:         t,
		responses: map[string][]any{},
		served:    map[string]int{},
		errs:      map[string]error{},
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}

func (f *fakeRequestor) on(method, path string, bodies ...any) *fakeRequestor {
	f.responses[routeKey(method, path)] = append(f.responses[routeKey(method, path)], bodies...)
	return f
}

func (f *fakeRequestor) fail(method, path string, err error) *fakeRequestor {
	f.errs[routeKey(method, path)] = err
	return f
}

func (f *fakeRequestor) ReadOnly() bool {
	return f.readOnly
}

func (f *fakeRequestor) Request(_ context.Context, method, path string, params, data url.Values, files map[string]string) (any, error) {
	f.requests = append(f.requests, recordedRequest{Method: method, Path: path, Params: params, Data: data, Files: files})

	key := routeKey(method, path)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	bodies := f.responses[key]
	if len(bodies) == 0 {
		return nil, &pkgerrs.APIError{StatusCode: http.StatusNotFound, Message: "no canned response for " + key}
	}
	i := min(f.served[key], len(bodies)-1)
	f.served[key]++

	var raw string
	switch body := bodies[i].(type) {
	case error:
		return nil, body
	case string:
		raw = body
	default:
		b, err := json.Marshal(body)
		require.NoError(f.t, err)
		raw = string(b)
	}
	return internal.Decode([]byte(raw))
}

// calls returns the recorded requests for a route.
func (f *fakeRequestor) calls(method, path string) []recordedRequest {
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func newTestReddit(t *testing.T, fake *fakeRequestor) *Reddit {
	t.Helper()
	r, err := NewClientWithRequestor(nil, fake)
	require.NoError(t, err)
	return r
}

func thing(kind string, data map[string]any) map[string]any {
	return map[string]any{"kind": kind, "data": data}
}

func listingOf(after string, children ...map[string]any) map[string]any {
	items := make([]any, len(children))
	for i, c := range children {
		items[i] = c
	}
	return thing("Listing", map[string]any{"after": after, "before": nil, "children": items})
}

func submissionThing(id string, extra map[string]any) map[string]any {
	data := map[string]any{"id": id, "name": "t3_" + id, "title": "title " + id, "author": "spez", "subreddit": "test"}
	for k, v := range extra {
		data[k] = v
	}
	return thing("t3", data)
}

func commentThing(id, parentID, linkID string, replies any) map[string]any {
	if replies == nil {
		replies = ""
	}
	return thing("t1", map[string]any{
		"id":        id,
		"name":      "t1_" + id,
		"parent_id": parentID,
		"link_id":   linkID,
		"body":      "body " + id,
		"author":    "commenter",
		"replies":   replies,
	})
}

func moreThing(id, parentID string, count int, children ...string) map[string]any {
	if children == nil {
		children = []string{}
	}
	return thing("more", map[string]any{
		"id":        id,
		"name":      "t1_" + id,
		"parent_id": parentID,
		"count":     count,
		"children":  children,
	})
}

// moreChildrenBody wraps things the way api/morechildren returns them.
func moreChildrenBody(things ...map[string]any) map[string]any {
	items := make([]any, len(things))
	for i, t := range things {
		items[i] = t
	}
	return map[string]any{"json": map[string]any{"errors": []any{}, "data": map[string]any{"things": items}}}
}

func noSleep(context.Context, time.Duration) error {
	return nil
}
