package graw

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// Subreddit is a community. Combined names such as "golang+rust" and
// filtered names such as "all-politics" are valid identifiers.
type Subreddit struct {
	base
}

// SearchOptions configures Subreddit.Search.
type SearchOptions struct {
	ListingOptions
	// Sort is one of relevance, hot, top, new or comments. Defaults to relevance.
	Sort string
	// Syntax is one of cloudsearch, lucene or plain. Defaults to lucene.
	Syntax string
	// TimeFilter defaults to all.
	TimeFilter string
}

// SubmitOptions configures Subreddit.Submit and Subreddit.SubmitSelfPost.
type SubmitOptions struct {
	FlairID        string
	FlairText      string
	CollectionID   string
	DiscussionType string
	NSFW           bool
	Spoiler        bool
	// DisableReplies turns off inbox replies for the new submission.
	DisableReplies bool
	// Resubmit allows a link that was already posted to the subreddit.
	Resubmit bool
	// InlineMedia maps placeholders in the self text, written as {key},
	// to media uploaded before submitting.
	InlineMedia map[string]*InlineMedia
}

// FlairEntry is a user's flair in a subreddit.
type FlairEntry struct {
	User     *Redditor
	Text     string
	CSSClass string
}

func newSubreddit(r *Reddit) *Subreddit {
	s := &Subreddit{}
	s.base = newBase(r, "Subreddit", types.KindSubreddit, "display_name")
	s.foldCase = true
	s.fetcher = s.fetch
	return s
}

func newSubredditFromData(r *Reddit, data map[string]any) *Subreddit {
	s := newSubreddit(r)
	s.load(data)
	s.fetched = true
	return s
}

// Subreddit returns a lazy subreddit with the given display name.
func (r *Reddit) Subreddit(name string) *Subreddit {
	s := newSubreddit(r)
	s.attrs["display_name"] = name
	return s
}

// DisplayName returns the subreddit name without the r/ prefix.
func (s *Subreddit) DisplayName() string {
	return asString(s.attrs["display_name"])
}

// Title returns the subreddit title.
func (s *Subreddit) Title(ctx context.Context) (string, error) {
	return s.GetString(ctx, "title")
}

// Subscribers returns the subscriber count.
func (s *Subreddit) Subscribers(ctx context.Context) (int, error) {
	return s.GetInt(ctx, "subscribers")
}

func (s *Subreddit) fields() internal.Fields {
	return internal.Fields{"subreddit": s.DisplayName()}
}

func (s *Subreddit) fetch(ctx context.Context) (map[string]any, error) {
	result, err := s.reddit.Get(ctx, internal.Endpoint("subreddit_about", s.fields()), nil)
	if err != nil {
		var redirect *pkgerrs.RedirectError
		if errors.As(err, &redirect) && strings.Contains(redirect.Path, "subreddits/search") {
			return nil, &pkgerrs.MissingObjectError{Message: "subreddit " + s.DisplayName() + " does not exist"}
		}
		return nil, err
	}
	fetched, ok := result.(*Subreddit)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "fetch subreddit", Message: "response is not a subreddit"}
	}
	return fetched.attrs, nil
}

func (s *Subreddit) sorted(sort, timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	if err := s.reddit.validator.ValidateSubredditName(s.DisplayName()); err != nil {
		return failedListing[*Submission](err)
	}
	return sortedListing(s.reddit, internal.Endpoint("subreddit", s.fields()), sort, timeFilter, opts)
}

// Hot lists the hot submissions.
func (s *Subreddit) Hot(opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("hot", "", opts)
}

// New lists the newest submissions.
func (s *Subreddit) New(opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("new", "", opts)
}

// Rising lists the rising submissions.
func (s *Subreddit) Rising(opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("rising", "", opts)
}

// Top lists the top submissions within timeFilter.
func (s *Subreddit) Top(timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("top", timeFilter, opts)
}

// Controversial lists the controversial submissions within timeFilter.
func (s *Subreddit) Controversial(timeFilter string, opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("controversial", timeFilter, opts)
}

// Gilded lists recently gilded submissions.
func (s *Subreddit) Gilded(opts *ListingOptions) *ListingGenerator[*Submission] {
	return s.sorted("gilded", "", opts)
}

// Comments lists the newest comments.
func (s *Subreddit) Comments(opts *ListingOptions) *ListingGenerator[*Comment] {
	return newListing[*Comment](s.reddit, internal.Endpoint("subreddit_comments", s.fields()), opts)
}

// Search lists the submissions matching query.
func (s *Subreddit) Search(query string, opts *SearchOptions) *ListingGenerator[*Submission] {
	if query == "" {
		return failedListing[*Submission](&pkgerrs.InvalidInputError{Field: "query", Message: "query cannot be empty"})
	}
	if opts == nil {
		opts = &SearchOptions{}
	}
	sort := opts.Sort
	if sort == "" {
		sort = "relevance"
	}
	syntax := opts.Syntax
	if syntax == "" {
		syntax = "lucene"
	}
	timeFilter := opts.TimeFilter
	if timeFilter == "" {
		timeFilter = types.TimeAll
	}
	if err := s.reddit.validator.ValidateTimeFilter(timeFilter); err != nil {
		return failedListing[*Submission](err)
	}

	lo := withParam(&opts.ListingOptions, "q", query)
	lo.Params.Set("sort", sort)
	lo.Params.Set("syntax", syntax)
	lo.Params.Set("t", timeFilter)
	if !strings.EqualFold(s.DisplayName(), "all") {
		lo.Params.Set("restrict_sr", "on")
	}
	return newListing[*Submission](s.reddit, internal.Endpoint("search", s.fields()), lo)
}

// ModLog lists moderator actions, optionally filtered by moderator name and action type.
func (s *Subreddit) ModLog(mod, action string, opts *ListingOptions) *ListingGenerator[*ModAction] {
	if mod != "" {
		opts = withParam(opts, "mod", mod)
	}
	if action != "" {
		opts = withParam(opts, "type", action)
	}
	return newListing[*ModAction](s.reddit, internal.Endpoint("about_log", s.fields()), opts)
}

// ModQueue lists the comments and submissions awaiting moderation.
func (s *Subreddit) ModQueue(opts *ListingOptions) *ListingGenerator[Entity] {
	return newListing[Entity](s.reddit, internal.Endpoint("about_modqueue", s.fields()), opts)
}

// Edited lists recently edited comments and submissions.
func (s *Subreddit) Edited(opts *ListingOptions) *ListingGenerator[Entity] {
	return newListing[Entity](s.reddit, internal.Endpoint("about_edited", s.fields()), opts)
}

// Flair lists user flair in the subreddit.
func (s *Subreddit) Flair(opts *ListingOptions) *ListingGenerator[FlairEntry] {
	g := newListing[FlairEntry](s.reddit, internal.Endpoint("flairlist", s.fields()), opts)
	g.convert = func(v any) (FlairEntry, bool) {
		m := asMap(v)
		if m == nil {
			return FlairEntry{}, false
		}
		return FlairEntry{
			User:     s.reddit.Redditor(asString(m["user"])),
			Text:     asString(m["flair_text"]),
			CSSClass: asString(m["flair_css_class"]),
		}, true
	}
	return g
}

// Random returns a random submission, or nil when the subreddit does not
// support random posts.
func (s *Subreddit) Random(ctx context.Context) (*Submission, error) {
	return s.redirectedSubmission(ctx, internal.Endpoint("subreddit_random", s.fields()), nil, true)
}

// Sticky returns the stickied submission in slot num, 1 or 2.
func (s *Subreddit) Sticky(ctx context.Context, num int) (*Submission, error) {
	if num < 1 {
		num = 1
	}
	params := url.Values{"num": {strconv.Itoa(num)}}
	return s.redirectedSubmission(ctx, internal.Endpoint("about_sticky", s.fields()), params, false)
}

// redirectedSubmission requests path and resolves the redirect Reddit
// answers with into a lazy submission.
func (s *Subreddit) redirectedSubmission(ctx context.Context, path string, params url.Values, lenient bool) (*Submission, error) {
	_, err := s.reddit.Get(ctx, path, params)
	var redirect *pkgerrs.RedirectError
	if !errors.As(err, &redirect) {
		if err != nil || lenient {
			return nil, err
		}
		return nil, &pkgerrs.ParseError{Operation: path, Message: "expected a redirect to a submission"}
	}

	sub, err := s.reddit.SubmissionFromURL(strings.TrimRight(s.reddit.config.RedditURL, "/") + redirect.Path)
	if err != nil && lenient {
		var invalid *pkgerrs.InvalidURLError
		if errors.As(err, &invalid) {
			return nil, nil
		}
	}
	return sub, err
}

// Submit creates a link submission.
func (s *Subreddit) Submit(ctx context.Context, title, link string, opts *SubmitOptions) (*Submission, error) {
	if link == "" {
		return nil, &pkgerrs.InvalidInputError{Field: "url", Message: "url cannot be empty"}
	}
	data, err := s.submitData(title, opts)
	if err != nil {
		return nil, err
	}
	data.Set("kind", "link")
	data.Set("url", link)
	return submitted(ctx, s.reddit, data)
}

// SubmitSelfPost creates a text submission. Inline media placeholders in
// selftext are uploaded and replaced before submitting.
func (s *Subreddit) SubmitSelfPost(ctx context.Context, title, selftext string, opts *SubmitOptions) (*Submission, error) {
	data, err := s.submitData(title, opts)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		for key, media := range opts.InlineMedia {
			if err := s.uploadInlineMedia(ctx, media); err != nil {
				return nil, err
			}
			selftext = strings.ReplaceAll(selftext, "{"+key+"}", media.String())
		}
	}
	data.Set("kind", "self")
	data.Set("text", selftext)
	return submitted(ctx, s.reddit, data)
}

func (s *Subreddit) submitData(title string, opts *SubmitOptions) (url.Values, error) {
	if err := s.reddit.requireUser("submit"); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, &pkgerrs.InvalidInputError{Field: "title", Message: "title cannot be empty"}
	}
	if opts == nil {
		opts = &SubmitOptions{}
	}

	data := url.Values{
		"sr":          {s.DisplayName()},
		"title":       {title},
		"resubmit":    {strconv.FormatBool(opts.Resubmit)},
		"sendreplies": {strconv.FormatBool(!opts.DisableReplies)},
		"nsfw":        {strconv.FormatBool(opts.NSFW)},
		"spoiler":     {strconv.FormatBool(opts.Spoiler)},
	}
	data.Set("validate_on_submit", "true")
	if opts.FlairID != "" {
		data.Set("flair_id", opts.FlairID)
	}
	if opts.FlairText != "" {
		data.Set("flair_text", opts.FlairText)
	}
	if opts.CollectionID != "" {
		data.Set("collection_id", opts.CollectionID)
	}
	if opts.DiscussionType != "" {
		data.Set("discussion_type", opts.DiscussionType)
	}
	return data, nil
}

// uploadInlineMedia leases an upload slot, posts the file to it and records
// the asset id on media.
func (s *Subreddit) uploadInlineMedia(ctx context.Context, media *InlineMedia) error {
	if media == nil || media.Path == "" {
		return &pkgerrs.InvalidInputError{Field: "inline_media", Message: "media path cannot be empty"}
	}

	lease := url.Values{"filepath": {media.fileName()}, "mimetype": {media.mimeType()}}
	result, err := s.reddit.Post(ctx, internal.Endpoint("media_asset", nil), lease, nil, nil)
	if err != nil {
		return err
	}
	resp := asMap(result)
	args := asMap(resp["args"])
	action := asString(args["action"])
	assetID := asString(asMap(resp["asset"])["asset_id"])
	if action == "" || assetID == "" {
		return &pkgerrs.ParseError{Operation: "media upload", Message: "upload lease is missing action or asset id"}
	}

	fields := url.Values{}
	for _, f := range asSlice(args["fields"]) {
		m := asMap(f)
		fields.Set(asString(m["name"]), asString(m["value"]))
	}
	if strings.HasPrefix(action, "//") {
		action = "https:" + action
	}

	s.reddit.logger.Debug("uploading inline media", "path", media.Path, "asset", assetID)

	if _, err := s.reddit.Post(ctx, action, fields, map[string]string{"file": media.Path}, nil); err != nil {
		return err
	}
	media.MediaID = assetID
	return nil
}

// Rules returns the subreddit's rules in order.
func (s *Subreddit) Rules(ctx context.Context) ([]*Rule, error) {
	result, err := s.reddit.Get(ctx, internal.Endpoint("about_rules", s.fields()), nil)
	if err != nil {
		return nil, err
	}
	items := asSlice(asMap(result)["rules"])
	rules := make([]*Rule, 0, len(items))
	for _, item := range items {
		if m := asMap(item); m != nil {
			rules = append(rules, newRuleFromData(s, m))
		}
	}
	return rules, nil
}

// Rule returns a lazy rule identified by its short name.
func (s *Subreddit) Rule(shortName string) *Rule {
	return newRule(s, shortName)
}

// RemovalReasons returns the subreddit's removal reasons in display order.
func (s *Subreddit) RemovalReasons(ctx context.Context) ([]*RemovalReason, error) {
	result, err := s.reddit.Get(ctx, internal.Endpoint("removal_reasons", s.fields()), nil)
	if err != nil {
		return nil, err
	}
	resp := asMap(result)
	data := asMap(resp["data"])
	order := asStrings(resp["order"])
	reasons := make([]*RemovalReason, 0, len(order))
	for _, id := range order {
		if m := asMap(data[id]); m != nil {
			reasons = append(reasons, newRemovalReasonFromData(s, m))
		}
	}
	return reasons, nil
}

// RemovalReason returns a lazy removal reason with the given id.
func (s *Subreddit) RemovalReason(id string) *RemovalReason {
	return newRemovalReason(s, id)
}

// Emojis returns the subreddit's custom emoji.
func (s *Subreddit) Emojis(ctx context.Context) ([]*Emoji, error) {
	result, err := s.reddit.Get(ctx, internal.Endpoint("emoji_list", s.fields()), nil)
	if err != nil {
		return nil, err
	}
	var out []*Emoji
	for group, v := range asMap(result) {
		// reddit-wide snoomojis are not the subreddit's own
		if group == "snoomojis" {
			continue
		}
		for name, data := range asMap(v) {
			if m := asMap(data); m != nil {
				out = append(out, newEmojiFromData(s, name, m))
			}
		}
	}
	return out, nil
}

// Emoji returns a lazy emoji with the given name.
func (s *Subreddit) Emoji(name string) *Emoji {
	return newEmoji(s, name)
}

// Wiki returns a lazy wiki page.
func (s *Subreddit) Wiki(page string) *WikiPage {
	return newWikiPage(s.reddit, s, page, "")
}

// Widgets returns the subreddit's widgets grouped by layout.
func (s *Subreddit) Widgets(ctx context.Context) (*SubredditWidgets, error) {
	result, err := s.reddit.Get(ctx, internal.Endpoint("widgets", s.fields()), url.Values{"progressive_images": {"true"}})
	if err != nil {
		return nil, err
	}
	return newSubredditWidgets(s, asMap(result)), nil
}

// ModNotes returns the moderator notes of the subreddit.
func (s *Subreddit) ModNotes() *SubredditModNotes {
	return &SubredditModNotes{subreddit: s}
}

// Stream returns the subreddit's comment and submission streams.
func (s *Subreddit) Stream() *SubredditStream {
	return &SubredditStream{subreddit: s}
}

// SubredditStream streams new content of a subreddit.
type SubredditStream struct {
	subreddit *Subreddit
}

// Comments streams new comments.
func (s *SubredditStream) Comments(opts *StreamOptions) *Stream[*Comment] {
	return newStream(s.subreddit.reddit, s.subreddit.Comments, commentID, opts)
}

// Submissions streams new submissions.
func (s *SubredditStream) Submissions(opts *StreamOptions) *Stream[*Submission] {
	return newStream(s.subreddit.reddit, s.subreddit.New, submissionID, opts)
}
