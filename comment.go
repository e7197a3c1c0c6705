package graw

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
	"github.com/jamesprial/graw/pkg/validation"
)

// commentContext is the number of parent levels requested by Refresh.
const commentContext = "100"

// Comment is a comment on a submission. Replies form a CommentForest.
type Comment struct {
	userContent

	submission *Submission
	replies    *CommentForest
}

func newComment(r *Reddit) *Comment {
	c := &Comment{}
	c.base = newBase(r, "Comment", types.KindComment, "id")
	c.fetcher = c.fetch
	c.rule = c.objectifyAttr
	return c
}

func newCommentFromData(r *Reddit, data map[string]any) *Comment {
	c := newComment(r)
	c.load(data)
	c.fetched = true
	return c
}

// Comment returns a lazy comment with the given base-36 id.
func (r *Reddit) Comment(id string) *Comment {
	c := newComment(r)
	c.attrs["id"] = id
	return c
}

// CommentFromURL returns a lazy comment for a comment permalink.
func (r *Reddit) CommentFromURL(rawURL string) (*Comment, error) {
	id, err := CommentIDFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	return r.Comment(id), nil
}

// CommentIDFromURL extracts the comment id from a permalink such as
// https://www.reddit.com/r/redditdev/comments/2gmzqe/praw_https/cklhv0f/.
func CommentIDFromURL(rawURL string) (string, error) {
	parts, err := urlParts(rawURL)
	if err != nil {
		return "", err
	}
	i := slices.Index(parts, "comments")
	if i < 0 || i != len(parts)-4 {
		return "", &pkgerrs.InvalidURLError{URL: rawURL}
	}
	id := parts[len(parts)-1]
	if !validation.IsValidBase36(id) {
		return "", &pkgerrs.InvalidURLError{URL: rawURL, Message: "invalid comment id"}
	}
	return id, nil
}

func (c *Comment) forestNode() {}

func (c *Comment) objectifyAttr(name string, v any) any {
	switch name {
	case "author":
		return redditorAttr(c.reddit, v)
	case "subreddit":
		return subredditAttr(c.reddit, v)
	case "replies":
		var forest *CommentForest
		switch replies := v.(type) {
		case *CommentForest:
			forest = replies
		case string:
			forest = newCommentForest(c.submission, nil)
		default:
			listing, _ := c.reddit.objector.value(v).(*Listing)
			if listing == nil {
				forest = newCommentForest(c.submission, nil)
			} else {
				forest = newCommentForest(c.submission, forestNodes(listing.Children))
			}
		}
		c.replies = forest
		return forest
	}
	return v
}

func (c *Comment) fetch(ctx context.Context) (map[string]any, error) {
	result, err := c.reddit.Get(ctx, internal.Endpoint("info", nil), url.Values{"id": {c.Fullname()}})
	if err != nil {
		return nil, err
	}
	listing, ok := result.(*Listing)
	if !ok || len(listing.Children) == 0 {
		return nil, &pkgerrs.MissingObjectError{Message: "No data returned for comment " + c.Fullname()}
	}
	fetched, ok := listing.Children[0].(*Comment)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch comment", Message: "info did not return a comment"}
	}
	return fetched.attrs, nil
}

// ID returns the base-36 id.
func (c *Comment) ID() string {
	return asString(c.attrs["id"])
}

// Body returns the markdown body.
func (c *Comment) Body(ctx context.Context) (string, error) {
	return c.GetString(ctx, "body")
}

// ParentID returns the fullname of the parent comment or submission.
func (c *Comment) ParentID() string {
	return asString(c.attrs["parent_id"])
}

// LinkID returns the fullname of the submission the comment belongs to.
func (c *Comment) LinkID() string {
	return asString(c.attrs["link_id"])
}

// IsRoot reports whether the comment replies directly to its submission.
func (c *Comment) IsRoot() bool {
	return strings.HasPrefix(c.ParentID(), types.KindSubmission+"_")
}

// Replies returns the comment's replies. A comment without loaded replies
// has an empty forest.
func (c *Comment) Replies() *CommentForest {
	if c.replies == nil {
		c.replies = newCommentForest(c.submission, nil)
	}
	return c.replies
}

// setSubmission attaches the comment and its replies to s and indexes them.
func (c *Comment) setSubmission(s *Submission) {
	c.submission = s
	s.commentsByID[c.Fullname()] = c
	c.Replies().setSubmission(s)
}

// Submission returns the submission the comment belongs to.
func (c *Comment) Submission(ctx context.Context) (*Submission, error) {
	if c.submission != nil {
		return c.submission, nil
	}

	var id string
	if permalink := asString(c.attrs["context"]); permalink != "" {
		parts := strings.Split(permalink, "/")
		if len(parts) >= 4 {
			id = parts[len(parts)-4]
		}
	}
	if id == "" {
		linkID, err := c.GetString(ctx, "link_id")
		if err != nil {
			return nil, err
		}
		_, id, _ = strings.Cut(linkID, "_")
	}

	c.submission = c.reddit.Submission(id)
	return c.submission, nil
}

// Parent returns the parent *Comment or *Submission. Parents already loaded
// in the submission's tree are returned as they are.
func (c *Comment) Parent(ctx context.Context) (Entity, error) {
	parentID, err := c.GetString(ctx, "parent_id")
	if err != nil {
		return nil, err
	}
	s, err := c.Submission(ctx)
	if err != nil {
		return nil, err
	}
	if parentID == s.Fullname() {
		return s, nil
	}
	if parent, ok := s.commentsByID[parentID]; ok {
		return parent, nil
	}

	_, id, _ := strings.Cut(parentID, "_")
	parent := c.reddit.Comment(id)
	parent.submission = s
	return parent, nil
}

// Refresh reloads the comment together with its replies. The comment must
// still exist on Reddit.
func (c *Comment) Refresh(ctx context.Context) error {
	permalink, _, _ := strings.Cut(asString(c.attrs["context"]), "?")
	path := strings.TrimPrefix(permalink, "/")
	if !validation.IsValidPermalink(permalink) {
		s, err := c.Submission(ctx)
		if err != nil {
			return err
		}
		path = internal.Endpoint("comment_thread", internal.Fields{"id": s.ID(), "comment": c.ID()})
	}

	params := url.Values{"context": {commentContext}}
	if c.submission != nil {
		params.Set("sort", c.submission.commentSort)
	}

	result, err := c.reddit.Get(ctx, path, params)
	if err != nil {
		return err
	}

	missing := &pkgerrs.MissingObjectError{Message: "This comment does not appear to exist."}
	parts := asSlice(result)
	if len(parts) != 2 {
		return missing
	}
	listing, ok := parts[1].(*Listing)
	if !ok || len(listing.Children) == 0 {
		return missing
	}

	tree := internal.NewTree(forestNodes(listing.Children), forestChildren)
	found, ok := tree.Find(func(n ForestNode) bool {
		other, ok := n.(*Comment)
		return ok && other.Fullname() == c.Fullname()
	})
	if !ok {
		return missing
	}

	fresh := found.(*Comment)
	maps.Copy(c.attrs, fresh.attrs)
	c.replies = fresh.Replies()
	c.fetched = true
	if c.submission != nil {
		c.replies.setSubmission(c.submission)
	}
	return nil
}
