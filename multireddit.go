package graw

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

const maxSlugLength = 21

var slugInvalid = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Sluggify derives the short name Reddit uses in a multireddit path from a
// display name.
func Sluggify(title string) string {
	slug := strings.ToLower(strings.Trim(slugInvalid.ReplaceAllString(title, "_"), "_"))
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		if i := strings.LastIndex(slug, "_"); i > 0 {
			slug = slug[:i]
		}
	}
	if slug == "" {
		return "_"
	}
	return slug
}

// Multireddit is a user's named collection of subreddits. Its key is the
// path /user/{owner}/m/{name}.
type Multireddit struct {
	base
}

// MultiredditOptions configures Reddit.CreateMultireddit.
type MultiredditOptions struct {
	Description string
	// Visibility is private, public or hidden. Defaults to private.
	Visibility string
	// Weighting is classic or fresh. Defaults to classic.
	Weighting string
	IconName  string
	KeyColor  string
}

func newMultireddit(r *Reddit) *Multireddit {
	m := &Multireddit{}
	m.base = newBase(r, "Multireddit", types.KindMultireddit, "path")
	m.foldCase = true
	m.fetcher = m.fetch
	m.rule = m.objectifyAttr
	return m
}

func newMultiredditFromData(r *Reddit, data map[string]any) *Multireddit {
	m := newMultireddit(r)
	m.load(data)
	m.fetched = true
	return m
}

// Multireddit returns a lazy multireddit owned by owner.
func (r *Reddit) Multireddit(owner, name string) *Multireddit {
	m := newMultireddit(r)
	m.attrs["path"] = "/user/" + owner + "/m/" + name
	m.attrs["name"] = name
	return m
}

// CreateMultireddit creates a multireddit owned by the current user.
func (r *Reddit) CreateMultireddit(ctx context.Context, displayName string, subreddits []string, opts *MultiredditOptions) (*Multireddit, error) {
	if err := r.requireUser("create multireddit"); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, &pkgerrs.InvalidInputError{Field: "display_name", Message: "display name cannot be empty"}
	}
	if opts == nil {
		opts = &MultiredditOptions{}
	}

	subs := make([]map[string]string, 0, len(subreddits))
	for _, name := range subreddits {
		if err := r.validator.ValidateSubredditName(name); err != nil {
			return nil, err
		}
		subs = append(subs, map[string]string{"name": name})
	}

	model := map[string]any{}
	model["display_name"] = displayName
	model["description_md"] = opts.Description
	model["subreddits"] = subs
	model["visibility"] = defaultString(opts.Visibility, "private")
	model["weighting_scheme"] = defaultString(opts.Weighting, "classic")
	if opts.IconName != "" {
		model["icon_name"] = opts.IconName
	}
	if opts.KeyColor != "" {
		model["key_color"] = opts.KeyColor
	}

	data, err := modelData(model)
	if err != nil {
		return nil, err
	}
	return multiredditResult(r.Post(ctx, internal.Endpoint("multireddit_base", nil), data, nil, nil))
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func modelData(model any) (url.Values, error) {
	b, err := json.Marshal(model)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "encode model", Err: err}
	}
	return url.Values{"model": {string(b)}}, nil
}

func multiredditResult(result any, err error) (*Multireddit, error) {
	if err != nil {
		return nil, err
	}
	m, ok := result.(*Multireddit)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "multireddit", Message: "response is not a multireddit"}
	}
	return m, nil
}

func (m *Multireddit) objectifyAttr(name string, v any) any {
	if name != "subreddits" {
		return v
	}
	items, ok := v.([]any)
	if !ok {
		return v
	}
	subs := make([]*Subreddit, 0, len(items))
	for _, item := range items {
		if sub := asString(asMap(item)["name"]); sub != "" {
			subs = append(subs, m.reddit.Subreddit(sub))
		}
	}
	return subs
}

// Path returns /user/{owner}/m/{name}.
func (m *Multireddit) Path() string {
	return asString(m.attrs["path"])
}

// Owner returns the redditor who owns the multireddit.
func (m *Multireddit) Owner() *Redditor {
	parts := strings.Split(m.Path(), "/")
	if len(parts) < 3 {
		return nil
	}
	return m.reddit.Redditor(parts[2])
}

// Name returns the multireddit's short name.
func (m *Multireddit) Name() string {
	if name := asString(m.attrs["name"]); name != "" {
		return name
	}
	parts := strings.Split(strings.TrimRight(m.Path(), "/"), "/")
	return parts[len(parts)-1]
}

// DisplayName returns the human-readable name.
func (m *Multireddit) DisplayName(ctx context.Context) (string, error) {
	return m.GetString(ctx, "display_name")
}

// Subreddits returns the member subreddits.
func (m *Multireddit) Subreddits(ctx context.Context) ([]*Subreddit, error) {
	v, err := m.Get(ctx, "subreddits")
	if err != nil {
		return nil, err
	}
	return entityAs[[]*Subreddit](v), nil
}

func (m *Multireddit) multipath() string {
	return strings.Trim(m.Path(), "/")
}

func (m *Multireddit) fetch(ctx context.Context) (map[string]any, error) {
	fetched, err := multiredditResult(m.reddit.Get(ctx, internal.Endpoint("multireddit_api", internal.Fields{"multipath": m.multipath()}), nil))
	if err != nil {
		return nil, err
	}
	return fetched.attrs, nil
}

func (m *Multireddit) sorted(sort, timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	return sortedListing(m.reddit, m.multipath()+"/", sort, timeFilter, opts)
}

// Hot lists the hot submissions across the member subreddits.
func (m *Multireddit) Hot(opts *ListingOptions) *ListingGenerator[*Submission] {
	return m.sorted("hot", "", opts)
}

// New lists the newest submissions across the member subreddits.
func (m *Multireddit) New(opts *ListingOptions) *ListingGenerator[*Submission] {
	return m.sorted("new", "", opts)
}

// Rising lists the rising submissions across the member subreddits.
func (m *Multireddit) Rising(opts *ListingOptions) *ListingGenerator[*Submission] {
	return m.sorted("rising", "", opts)
}

// Top lists the top submissions within timeFilter.
func (m *Multireddit) Top(timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	return m.sorted("top", timeFilter, opts)
}

// Controversial lists the controversial submissions within timeFilter.
func (m *Multireddit) Controversial(timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	return m.sorted("controversial", timeFilter, opts)
}

// Add adds a subreddit to the multireddit.
func (m *Multireddit) Add(ctx context.Context, subreddit string) error {
	path, data, err := m.update(subreddit)
	if err != nil {
		return err
	}
	if _, err := m.reddit.Put(ctx, path, data); err != nil {
		return err
	}
	m.fetched = false
	delete(m.attrs, "subreddits")
	return nil
}

// Remove removes a subreddit from the multireddit.
func (m *Multireddit) Remove(ctx context.Context, subreddit string) error {
	path, data, err := m.update(subreddit)
	if err != nil {
		return err
	}
	if _, err := m.reddit.Delete(ctx, path, data); err != nil {
		return err
	}
	m.fetched = false
	delete(m.attrs, "subreddits")
	return nil
}

func (m *Multireddit) update(subreddit string) (string, url.Values, error) {
	if err := m.reddit.requireUser("update multireddit"); err != nil {
		return "", nil, err
	}
	if err := m.reddit.validator.ValidateSubredditName(subreddit); err != nil {
		return "", nil, err
	}
	data, err := modelData(map[string]string{"name": subreddit})
	if err != nil {
		return "", nil, err
	}
	path := internal.Endpoint("multireddit_update", internal.Fields{"multipath": m.multipath(), "subreddit": subreddit})
	return path, data, nil
}

// Copy copies the multireddit into the current user's account under
// displayName. An empty displayName keeps the original display name.
func (m *Multireddit) Copy(ctx context.Context, displayName string) (*Multireddit, error) {
	if displayName == "" {
		var err error
		if displayName, err = m.DisplayName(ctx); err != nil {
			return nil, err
		}
	}
	me, err := m.reddit.Me(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := me.Name(ctx)
	if err != nil {
		return nil, err
	}

	to := internal.Endpoint("multireddit", internal.Fields{"user": owner, "multi": Sluggify(displayName)})
	data := url.Values{
		"display_name": {displayName},
		"from":         {m.Path()},
		"to":           {to},
	}
	return multiredditResult(m.reddit.Post(ctx, internal.Endpoint("multireddit_copy", nil), data, nil, nil))
}
