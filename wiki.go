package graw

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// maxWikiUpdateAttempts bounds UpdateSafe's retries on edit conflicts.
const maxWikiUpdateAttempts = 10

// WikiPage is a page of a subreddit wiki, optionally pinned to a revision.
type WikiPage struct {
	base
	subreddit *Subreddit
	name      string
	revision  string
}

// WikiRevision is an entry in a wiki page's history.
type WikiRevision struct {
	ID        string
	Author    *Redditor
	Reason    string
	Timestamp float64
	Page      *WikiPage
}

func newWikiPage(r *Reddit, s *Subreddit, name, revision string) *WikiPage {
	w := &WikiPage{subreddit: s, name: name, revision: revision}
	w.base = newBase(r, "WikiPage", types.KindWikiPage, "")
	w.fetcher = w.fetch
	w.rule = w.objectifyAttr
	return w
}

func newWikiPageFromData(r *Reddit, s *Subreddit, name string, data map[string]any) *WikiPage {
	w := newWikiPage(r, s, name, "")
	w.load(data)
	w.fetched = true
	return w
}

// Key is "subreddit/page", lower-cased.
func (w *WikiPage) Key() string {
	sub := ""
	if w.subreddit != nil {
		sub = w.subreddit.DisplayName()
	}
	return strings.ToLower(sub + "/" + w.name)
}

func (w *WikiPage) String() string {
	return w.Key()
}

// Name returns the page name.
func (w *WikiPage) Name() string {
	return w.name
}

func (w *WikiPage) objectifyAttr(name string, v any) any {
	if name == "revision_by" {
		return w.reddit.objector.value(v)
	}
	return v
}

func (w *WikiPage) fields() internal.Fields {
	return internal.Fields{"subreddit": w.subreddit.DisplayName(), "page": w.name}
}

func (w *WikiPage) fetch(ctx context.Context) (map[string]any, error) {
	if w.subreddit == nil {
		return nil, &pkgerrs.StateError{Operation: "fetch wiki page", Message: "page is not attached to a subreddit"}
	}
	var params url.Values
	if w.revision != "" {
		params = url.Values{"v": {w.revision}}
	}
	result, err := w.reddit.Get(ctx, internal.Endpoint("wiki_page", w.fields()), params)
	if err != nil {
		if pkgerrs.IsNotFound(err) {
			return nil, &pkgerrs.MissingObjectError{Message: "wiki page " + w.Key() + " does not exist"}
		}
		return nil, err
	}
	fetched, ok := result.(*WikiPage)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch wiki page", Message: "response is not a wiki page"}
	}
	return fetched.attrs, nil
}

// ContentMD returns the markdown source.
func (w *WikiPage) ContentMD(ctx context.Context) (string, error) {
	return w.GetString(ctx, "content_md")
}

// RevisionID returns the id of the loaded revision.
func (w *WikiPage) RevisionID(ctx context.Context) (string, error) {
	return w.GetString(ctx, "revision_id")
}

// RevisionBy returns the author of the loaded revision.
func (w *WikiPage) RevisionBy(ctx context.Context) (*Redditor, error) {
	v, err := w.Get(ctx, "revision_by")
	if err != nil {
		return nil, err
	}
	return entityAs[*Redditor](v), nil
}

// Revision returns a lazy copy of the page pinned to revision id.
func (w *WikiPage) Revision(id string) *WikiPage {
	return newWikiPage(w.reddit, w.subreddit, w.name, id)
}

// Revisions lists the page's history, newest first.
func (w *WikiPage) Revisions(opts *ListingOptions) *ListingGenerator[WikiRevision] {
	g := newListing[WikiRevision](w.reddit, internal.Endpoint("wiki_page_revisions", w.fields()), opts)
	g.convert = func(v any) (WikiRevision, bool) {
		m := asMap(v)
		if m == nil {
			return WikiRevision{}, false
		}
		id := asString(m["id"])
		return WikiRevision{
			ID:        id,
			Author:    entityAs[*Redditor](m["author"]),
			Reason:    asString(m["reason"]),
			Timestamp: asFloat(m["timestamp"]),
			Page:      w.Revision(id),
		}, true
	}
	return g
}

// Edit replaces the page content. previous is the revision the edit is
// based on; when it is stale Reddit rejects the edit with
// *errors.WikiConflictError.
func (w *WikiPage) Edit(ctx context.Context, content, reason, previous string) error {
	if err := w.reddit.requireUser("wiki edit"); err != nil {
		return err
	}
	data := url.Values{"content": {content}, "page": {w.name}}
	if reason != "" {
		data.Set("reason", reason)
	}
	if previous != "" {
		data.Set("previous", previous)
	}

	path := internal.Endpoint("wiki_edit", internal.Fields{"subreddit": w.subreddit.DisplayName()})
	_, err := w.reddit.Post(ctx, path, data, nil, nil)
	var apiErr *pkgerrs.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		details := asMap(apiErr.Details)
		return &pkgerrs.WikiConflictError{
			NewRevision: asString(details["newrevision"]),
			NewContent:  asString(details["newcontent"]),
			Message:     apiErr.Message,
		}
	}
	if err == nil {
		w.fetched = false
		clear(w.attrs)
	}
	return err
}

// UpdateSafe applies transform to the current content and saves the result.
// When someone else edits the page in between, transform is applied again
// to their revision.
func (w *WikiPage) UpdateSafe(ctx context.Context, transform func(string) string, reason string) error {
	content, err := w.ContentMD(ctx)
	if err != nil {
		return err
	}
	revision, err := w.RevisionID(ctx)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := w.Edit(ctx, transform(content), reason, revision)
		var conflict *pkgerrs.WikiConflictError
		if !errors.As(err, &conflict) || attempt == maxWikiUpdateAttempts {
			return err
		}
		w.reddit.logger.Debug("wiki edit conflict", "page", w.Key(), "revision", conflict.NewRevision, "attempt", attempt)
		content, revision = conflict.NewContent, conflict.NewRevision
	}
}
