package graw

import (
	"context"
	"errors"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
	"github.com/jamesprial/graw/pkg/validation"
)

// maxBatchIDs is the number of fullnames hide, unhide and store_visits accept at once.
const maxBatchIDs = 50

// Submission is a link or self post. Its comments load with the submission
// and are held in a CommentForest.
type Submission struct {
	userContent

	commentsByID map[string]*Comment
	comments     *CommentForest
	commentSort  string
	commentLimit int
}

// CrosspostOptions configures Submission.Crosspost.
type CrosspostOptions struct {
	// Title defaults to the title of the original submission.
	Title          string
	FlairID        string
	FlairText      string
	NSFW           bool
	Spoiler        bool
	DisableReplies bool
}

func newSubmission(r *Reddit) *Submission {
	s := &Submission{
		commentsByID: map[string]*Comment{},
		commentSort:  r.config.CommentSort,
		commentLimit: r.config.CommentLimit,
	}
	s.base = newBase(r, "Submission", types.KindSubmission, "id")
	s.fetcher = s.fetch
	s.rule = s.objectifyAttr
	return s
}

func newSubmissionFromData(r *Reddit, data map[string]any) *Submission {
	s := newSubmission(r)
	s.load(data)
	s.fetched = true
	return s
}

// Submission returns a lazy submission with the given base-36 id.
func (r *Reddit) Submission(id string) *Submission {
	s := newSubmission(r)
	s.attrs["id"] = id
	return s
}

// SubmissionFromURL returns a lazy submission for a permalink, gallery or short URL.
func (r *Reddit) SubmissionFromURL(rawURL string) (*Submission, error) {
	id, err := SubmissionIDFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	return r.Submission(id), nil
}

// SubmissionIDFromURL extracts the submission id from a URL such as
// https://www.reddit.com/r/redditdev/comments/2gmzqe/praw_https/,
// https://www.reddit.com/gallery/2gmzqe or https://redd.it/2gmzqe.
func SubmissionIDFromURL(rawURL string) (string, error) {
	parts, err := urlParts(rawURL)
	if err != nil {
		return "", err
	}

	var id string
	switch {
	case slices.Contains(parts, "gallery"):
		i := slices.Index(parts, "gallery")
		if i+1 < len(parts) {
			id = parts[i+1]
		}
	case slices.Contains(parts, "comments"):
		i := slices.Index(parts, "comments")
		if i == len(parts)-1 {
			return "", &pkgerrs.InvalidURLError{URL: rawURL, Message: "submission id not present"}
		}
		id = parts[i+1]
	default:
		if slices.Contains(parts, "r") {
			return "", &pkgerrs.InvalidURLError{URL: rawURL, Message: "subreddit, not submission"}
		}
		id = parts[len(parts)-1]
	}

	if !validation.IsAlphanumeric(id) {
		return "", &pkgerrs.InvalidURLError{URL: rawURL}
	}
	return id, nil
}

// urlParts splits the path of an absolute URL, ignoring a trailing slash.
func urlParts(rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &pkgerrs.InvalidURLError{URL: rawURL}
	}
	return strings.Split(strings.TrimRight(u.Path, "/"), "/"), nil
}

func (s *Submission) objectifyAttr(name string, v any) any {
	switch name {
	case "author":
		return redditorAttr(s.reddit, v)
	case "subreddit":
		return subredditAttr(s.reddit, v)
	case "poll_data":
		if m := asMap(v); m != nil {
			return newPollData(m)
		}
	}
	return v
}

func (s *Submission) fetch(ctx context.Context) (map[string]any, error) {
	path := internal.Endpoint("submission", internal.Fields{"id": s.ID()})
	params := url.Values{
		"limit": {strconv.Itoa(s.commentLimit)},
		"sort":  {s.commentSort},
	}

	result, err := s.reddit.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	parts := asSlice(result)
	if len(parts) != 2 {
		return nil, &pkgerrs.ParseError{Operation: "fetch submission", Message: "expected submission and comment listings"}
	}
	submissionListing, ok := parts[0].(*Listing)
	if !ok || len(submissionListing.Children) == 0 {
		return nil, &pkgerrs.MissingObjectError{Message: "no data returned for submission " + s.ID()}
	}
	fetched, ok := submissionListing.Children[0].(*Submission)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch submission", Message: "first listing does not hold a submission"}
	}
	commentListing, ok := parts[1].(*Listing)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch submission", Message: "second element is not a comment listing"}
	}

	s.commentsByID = map[string]*Comment{}
	s.comments = newCommentForest(s, forestNodes(commentListing.Children))
	s.comments.setSubmission(s)
	return fetched.attrs, nil
}

// ID returns the base-36 id.
func (s *Submission) ID() string {
	return asString(s.attrs["id"])
}

// Title returns the title.
func (s *Submission) Title(ctx context.Context) (string, error) {
	return s.GetString(ctx, "title")
}

// Selftext returns the markdown body of a self post.
func (s *Submission) Selftext(ctx context.Context) (string, error) {
	return s.GetString(ctx, "selftext")
}

// URL returns the link target, or the permalink of a self post.
func (s *Submission) URL(ctx context.Context) (string, error) {
	return s.GetString(ctx, "url")
}

// NumComments returns the comment count Reddit reports.
func (s *Submission) NumComments(ctx context.Context) (int, error) {
	return s.GetInt(ctx, "num_comments")
}

// Comments returns the top-level comment forest, fetching the submission
// if its comments have not been loaded.
func (s *Submission) Comments(ctx context.Context) (*CommentForest, error) {
	if s.comments == nil {
		if err := s.Fetch(ctx); err != nil {
			return nil, err
		}
	}
	return s.comments, nil
}

// CommentsByID returns the index of loaded comments keyed by fullname.
func (s *Submission) CommentsByID() map[string]*Comment {
	return maps.Clone(s.commentsByID)
}

// CommentSort returns the sort used when loading comments.
func (s *Submission) CommentSort() string {
	return s.commentSort
}

// SetCommentSort changes the sort used by later comment loads.
func (s *Submission) SetCommentSort(sort string) error {
	if err := s.reddit.validator.ValidateCommentSort(sort); err != nil {
		return err
	}
	s.commentSort = sort
	return nil
}

// CommentLimit returns the number of comments requested with the submission.
func (s *Submission) CommentLimit() int {
	return s.commentLimit
}

// SetCommentLimit changes the number of comments requested by later loads.
func (s *Submission) SetCommentLimit(limit int) error {
	if limit <= 0 {
		return &pkgerrs.InvalidInputError{Field: "limit", Message: "comment limit must be positive"}
	}
	s.commentLimit = limit
	return nil
}

// Refresh reloads the submission and its comments.
func (s *Submission) Refresh(ctx context.Context) error {
	return s.Fetch(ctx)
}

// Poll returns the poll attached to the submission, or nil if there is none.
func (s *Submission) Poll(ctx context.Context) (*PollData, error) {
	v, err := s.Get(ctx, "poll_data")
	if err != nil {
		var attrErr *pkgerrs.AttributeError
		if errors.As(err, &attrErr) {
			return nil, nil
		}
		return nil, err
	}
	return entityAs[*PollData](v), nil
}

// Crosspost submits the submission to another subreddit and returns the new post.
func (s *Submission) Crosspost(ctx context.Context, subreddit string, opts *CrosspostOptions) (*Submission, error) {
	if err := s.reddit.requireUser("crosspost"); err != nil {
		return nil, err
	}
	if err := s.reddit.validator.ValidateSubredditName(subreddit); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &CrosspostOptions{}
	}

	title := opts.Title
	if title == "" {
		var err error
		if title, err = s.Title(ctx); err != nil {
			return nil, err
		}
	}

	data := url.Values{
		"sr":                 {subreddit},
		"title":              {title},
		"kind":               {"crosspost"},
		"crosspost_fullname": {s.Fullname()},
		"sendreplies":        {strconv.FormatBool(!opts.DisableReplies)},
		"nsfw":               {strconv.FormatBool(opts.NSFW)},
		"spoiler":            {strconv.FormatBool(opts.Spoiler)},
	}
	if opts.FlairID != "" {
		data.Set("flair_id", opts.FlairID)
	}
	if opts.FlairText != "" {
		data.Set("flair_text", opts.FlairText)
	}

	return submitted(ctx, s.reddit, data)
}

// Duplicates lists other submissions of the same link.
func (s *Submission) Duplicates(opts *ListingOptions) *ListingGenerator[*Submission] {
	return newListing[*Submission](s.reddit, internal.Endpoint("duplicates", internal.Fields{"submission_id": s.ID()}), opts)
}

// Hide hides the submission and any others from the user's listings.
func (s *Submission) Hide(ctx context.Context, others ...*Submission) error {
	return s.batch(ctx, "hide", "id", others)
}

// Unhide reverses Hide.
func (s *Submission) Unhide(ctx context.Context, others ...*Submission) error {
	return s.batch(ctx, "unhide", "id", others)
}

// MarkVisited records the submission and any others as visited.
func (s *Submission) MarkVisited(ctx context.Context, others ...*Submission) error {
	return s.batch(ctx, "store_visits", "links", others)
}

func (s *Submission) batch(ctx context.Context, endpoint, field string, others []*Submission) error {
	if err := s.reddit.requireUser(endpoint); err != nil {
		return err
	}
	ids := make([]string, 0, len(others)+1)
	ids = append(ids, s.Fullname())
	for _, o := range others {
		ids = append(ids, o.Fullname())
	}
	for chunk := range slices.Chunk(ids, maxBatchIDs) {
		data := url.Values{field: {strings.Join(chunk, ",")}}
		if _, err := s.reddit.Post(ctx, internal.Endpoint(endpoint, nil), data, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Sticky pins or unpins the submission. A submission that is already
// stickied is left as is.
func (s *Submission) Sticky(ctx context.Context, state, bottom bool) error {
	data := url.Values{
		"id":    {s.Fullname()},
		"state": {strconv.FormatBool(state)},
	}
	if !bottom {
		data.Set("num", "1")
	}
	_, err := s.reddit.Post(ctx, internal.Endpoint("sticky_submission", nil), data, nil, nil)
	if pkgerrs.IsConflict(err) {
		s.reddit.logger.Debug("submission already stickied", "id", s.ID())
		return nil
	}
	return err
}

// submitted posts data to the submit endpoint and returns the created submission.
func submitted(ctx context.Context, r *Reddit, data url.Values) (*Submission, error) {
	result, err := r.Post(ctx, internal.Endpoint("submit", nil), data, nil, nil)
	if err != nil {
		return nil, err
	}
	m := asMap(result)
	if id := asString(m["id"]); id != "" {
		return r.Submission(id), nil
	}
	if link := asString(m["url"]); link != "" {
		return r.SubmissionFromURL(link)
	}
	return nil, &pkgerrs.ParseError{Operation: "submit", Message: "response does not identify the new submission"}
}
