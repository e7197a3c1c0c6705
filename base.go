package graw

import (
	"context"
	"encoding/json"
	"maps"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// Entity is a remote Reddit object whose attributes load on first access.
type Entity interface {
	// TypeName names the concrete entity type, e.g. "Submission".
	TypeName() string
	// Key is the canonical identifier. Names that Reddit treats
	// case-insensitively are lower-cased.
	Key() string
	// Fetched reports whether the attribute set came from the server.
	Fetched() bool
	// Get returns an attribute, fetching the entity once if it is missing.
	Get(ctx context.Context, name string) (any, error)
}

// Equal reports whether a and b refer to the same remote object.
func Equal(a, b Entity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.TypeName() == b.TypeName() && a.Key() == b.Key()
}

type (
	fetchFunc func(ctx context.Context) (map[string]any, error)
	attrRule  func(name string, value any) any
)

// base carries the attribute bag and lazy fetch shared by every entity.
type base struct {
	reddit   *Reddit
	typeName string
	kind     string
	idAttr   string
	foldCase bool

	attrs    map[string]any
	fetched  bool
	fetching bool

	fetcher fetchFunc
	rule    attrRule
}

func newBase(r *Reddit, typeName, kind, idAttr string) base {
	return base{
		reddit:   r,
		typeName: typeName,
		kind:     kind,
		idAttr:   idAttr,
		attrs:    map[string]any{},
	}
}

// TypeName implements Entity.
func (b *base) TypeName() string {
	return b.typeName
}

// Key implements Entity.
func (b *base) Key() string {
	id := asString(b.attrs[b.idAttr])
	if b.foldCase {
		return strings.ToLower(id)
	}
	return id
}

func (b *base) String() string {
	return asString(b.attrs[b.idAttr])
}

// Fullname returns the kind-prefixed id, or "" while the id is unknown.
func (b *base) Fullname() string {
	id := asString(b.attrs["id"])
	if b.kind == "" || id == "" {
		return ""
	}
	return types.MakeFullname(b.kind, id)
}

// Fetched implements Entity.
func (b *base) Fetched() bool {
	return b.fetched
}

// Raw returns an attribute without fetching.
func (b *base) Raw(name string) (any, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attributes loaded so far.
func (b *base) Attrs() map[string]any {
	return maps.Clone(b.attrs)
}

// Get implements Entity. Names starting with an underscore never trigger a
// fetch, and neither does a lookup made while a fetch is in progress.
func (b *base) Get(ctx context.Context, name string) (any, error) {
	if v, ok := b.attrs[name]; ok {
		return v, nil
	}
	if !b.fetched && !b.fetching && !strings.HasPrefix(name, "_") {
		if err := b.Fetch(ctx); err != nil {
			return nil, err
		}
		if v, ok := b.attrs[name]; ok {
			return v, nil
		}
	}
	return nil, &pkgerrs.AttributeError{Type: b.typeName, Name: name}
}

// GetString returns an attribute as a string. Missing or null values read as "".
func (b *base) GetString(ctx context.Context, name string) (string, error) {
	v, err := b.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// GetInt returns a numeric attribute truncated to an int.
func (b *base) GetInt(ctx context.Context, name string) (int, error) {
	v, err := b.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return asInt(v), nil
}

// GetFloat returns a numeric attribute.
func (b *base) GetFloat(ctx context.Context, name string) (float64, error) {
	v, err := b.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return asFloat(v), nil
}

// GetBool returns a boolean attribute.
func (b *base) GetBool(ctx context.Context, name string) (bool, error) {
	v, err := b.Get(ctx, name)
	if err != nil {
		return false, err
	}
	return asBool(v), nil
}

// Fetch reloads the entity from Reddit, replacing its attributes. The
// identifier and private attributes survive the swap.
func (b *base) Fetch(ctx context.Context) error {
	if b.fetcher == nil {
		b.fetched = true
		return nil
	}

	b.fetching = true
	defer func() { b.fetching = false }()

	b.reddit.logger.Debug("fetching entity", "type", b.typeName, "key", b.Key())

	data, err := b.fetcher(ctx)
	if err != nil {
		return err
	}

	attrs := b.convert(data)
	for k, v := range b.attrs {
		if _, ok := attrs[k]; !ok && (k == b.idAttr || strings.HasPrefix(k, "_")) {
			attrs[k] = v
		}
	}
	b.attrs = attrs
	b.fetched = true
	return nil
}

// load merges data into the attributes, applying the entity's rules.
func (b *base) load(data map[string]any) {
	maps.Copy(b.attrs, b.convert(data))
}

func (b *base) convert(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if b.rule != nil {
			v = b.rule(k, v)
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the loaded attributes without fetching.
func (b *base) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.attrs)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asStrings(v any) []string {
	items := asSlice(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// redditorAttr turns an author name into a lazy Redditor. Deleted authors read as nil.
func redditorAttr(r *Reddit, v any) any {
	name, ok := v.(string)
	if !ok {
		return v
	}
	if name == "" || name == "[deleted]" {
		return nil
	}
	return r.Redditor(name)
}

func subredditAttr(r *Reddit, v any) any {
	name, ok := v.(string)
	if !ok || name == "" {
		return v
	}
	return r.Subreddit(name)
}

func entityAs[T any](v any) T {
	t, _ := v.(T)
	return t
}
