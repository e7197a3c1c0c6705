package graw

import (
	"context"
	"iter"
	"net/url"
	"slices"
	"strings"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// modNotesBulkSize is the number of subreddit/user pairs the bulk endpoint accepts.
const modNotesBulkSize = 500

// ModNote is a moderator note or a logged moderator action about a user.
type ModNote struct {
	base
}

// ModNotesOptions configures mod note listings. A zero Limit drains the
// listing.
type ModNotesOptions struct {
	ListingOptions
	// Filter restricts the note type, e.g. NOTE, BAN or REMOVAL.
	Filter string
}

// ModNoteInput describes a note to create.
type ModNoteInput struct {
	Subreddit string
	User      string
	Note      string
	// Label is one of BOT_BAN, PERMA_BAN, BAN, ABUSE_WARNING, SPAM_WARNING,
	// SPAM_WATCH, SOLID_CONTRIBUTOR or HELPFUL_USER.
	Label string
	// Thing is the fullname of a comment or submission the note refers to.
	Thing string
}

// ModNotePair names a subreddit and a user for bulk lookups.
type ModNotePair struct {
	Subreddit string
	User      string
}

func newModNoteFromData(r *Reddit, data map[string]any) *ModNote {
	n := &ModNote{}
	n.base = newBase(r, "ModNote", "", "id")
	n.load(data)
	n.fetched = true
	return n
}

// ID returns the note id.
func (n *ModNote) ID() string {
	return asString(n.attrs["id"])
}

// Subreddit returns the subreddit the note belongs to.
func (n *ModNote) Subreddit() string {
	return asString(n.attrs["subreddit"])
}

// User returns the name of the user the note is about.
func (n *ModNote) User() string {
	return asString(n.attrs["user"])
}

// Operator returns the name of the moderator who wrote the note.
func (n *ModNote) Operator() string {
	return asString(n.attrs["operator"])
}

// Type returns the note type, e.g. NOTE or BAN.
func (n *ModNote) Type() string {
	return asString(n.attrs["type"])
}

// CreatedAt returns the creation time as a unix timestamp.
func (n *ModNote) CreatedAt() int {
	return asInt(n.attrs["created_at"])
}

// Note returns the text of a user note.
func (n *ModNote) Note() string {
	return asString(asMap(n.attrs["user_note_data"])["note"])
}

// Label returns the label of a user note.
func (n *ModNote) Label() string {
	return asString(asMap(n.attrs["user_note_data"])["label"])
}

// Action returns the moderator action of an action note.
func (n *ModNote) Action() string {
	return asString(asMap(n.attrs["mod_action_data"])["action"])
}

// RedditID returns the fullname of the item the note refers to, if any.
func (n *ModNote) RedditID() string {
	if id := asString(asMap(n.attrs["user_note_data"])["reddit_id"]); id != "" {
		return id
	}
	return asString(asMap(n.attrs["mod_action_data"])["reddit_id"])
}

// Delete deletes the note.
func (n *ModNote) Delete(ctx context.Context) error {
	return deleteModNote(ctx, n.reddit, n.Subreddit(), n.User(), n.ID())
}

func modNotesListing(r *Reddit, subreddit, user string, opts *ModNotesOptions) *ListingGenerator[*ModNote] {
	if subreddit == "" || user == "" {
		return failedListing[*ModNote](&pkgerrs.InvalidInputError{Field: "subreddit", Message: "subreddit and user are required"})
	}
	lo := &ListingOptions{}
	filter := ""
	if opts != nil {
		lo, filter = &opts.ListingOptions, opts.Filter
	}
	lo = withParam(lo, "subreddit", subreddit)
	if lo.Limit == 0 {
		lo.Limit = NoLimit
	}
	lo.Params.Set("user", user)
	if filter != "" {
		lo.Params.Set("filter", filter)
	}
	g := newListing[*ModNote](r, internal.Endpoint("mod_notes", nil), lo)
	g.afterParam = "before"
	return g
}

// bulkModNotes yields the most recent note for each pair, or nil for pairs
// without notes.
func bulkModNotes(ctx context.Context, r *Reddit, pairs []ModNotePair) iter.Seq2[*ModNote, error] {
	return func(yield func(*ModNote, error) bool) {
		for chunk := range slices.Chunk(pairs, modNotesBulkSize) {
			subs := make([]string, len(chunk))
			users := make([]string, len(chunk))
			for i, p := range chunk {
				subs[i], users[i] = p.Subreddit, p.User
			}
			params := url.Values{"subreddits": {strings.Join(subs, ",")}, "users": {strings.Join(users, ",")}}

			result, err := r.Get(ctx, internal.Endpoint("mod_notes_bulk", nil), params)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, item := range asSlice(asMap(result)["mod_notes"]) {
				if !yield(entityAs[*ModNote](item), nil) {
					return
				}
			}
		}
	}
}

// allModNotes yields every note for every subreddit and user combination.
func allModNotes(ctx context.Context, r *Reddit, subreddits, users []string, opts *ModNotesOptions) iter.Seq2[*ModNote, error] {
	return func(yield func(*ModNote, error) bool) {
		for _, sub := range subreddits {
			for _, user := range users {
				for note, err := range modNotesListing(r, sub, user, opts).All(ctx) {
					if !yield(note, err) || err != nil {
						return
					}
				}
			}
		}
	}
}

func createModNote(ctx context.Context, r *Reddit, in ModNoteInput) (*ModNote, error) {
	if err := r.requireUser("create mod note"); err != nil {
		return nil, err
	}
	if in.Subreddit == "" || in.User == "" || in.Note == "" {
		return nil, &pkgerrs.InvalidInputError{Field: "note", Message: "subreddit, user and note are required"}
	}
	data := url.Values{"subreddit": {in.Subreddit}, "user": {in.User}, "note": {in.Note}}
	if in.Label != "" {
		data.Set("label", in.Label)
	}
	if in.Thing != "" {
		data.Set("reddit_id", in.Thing)
	}

	result, err := r.Post(ctx, internal.Endpoint("mod_notes", nil), data, nil, nil)
	if err != nil {
		return nil, err
	}
	note, ok := asMap(result)["created"].(*ModNote)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "create mod note", Message: "response does not hold the created note"}
	}
	return note, nil
}

func deleteModNote(ctx context.Context, r *Reddit, subreddit, user, noteID string) error {
	if err := r.requireUser("delete mod note"); err != nil {
		return err
	}
	params := url.Values{"subreddit": {subreddit}, "user": {user}, "note_id": {noteID}}
	_, err := r.Delete(ctx, internal.Endpoint("mod_notes", nil), params)
	return err
}

// SubredditModNotes manages the moderator notes of one subreddit.
type SubredditModNotes struct {
	subreddit *Subreddit
}

// Redditor lists the notes about user.
func (n *SubredditModNotes) Redditor(user string, opts *ModNotesOptions) *ListingGenerator[*ModNote] {
	return modNotesListing(n.subreddit.reddit, n.subreddit.DisplayName(), user, opts)
}

// Recent yields the most recent note for each user, or nil for users without notes.
func (n *SubredditModNotes) Recent(ctx context.Context, users ...string) iter.Seq2[*ModNote, error] {
	pairs := make([]ModNotePair, len(users))
	for i, u := range users {
		pairs[i] = ModNotePair{Subreddit: n.subreddit.DisplayName(), User: u}
	}
	return bulkModNotes(ctx, n.subreddit.reddit, pairs)
}

// All yields every note about each of users.
func (n *SubredditModNotes) All(ctx context.Context, users []string, opts *ModNotesOptions) iter.Seq2[*ModNote, error] {
	return allModNotes(ctx, n.subreddit.reddit, []string{n.subreddit.DisplayName()}, users, opts)
}

// Create adds a note about user.
func (n *SubredditModNotes) Create(ctx context.Context, user, note, label, thing string) (*ModNote, error) {
	return createModNote(ctx, n.subreddit.reddit, ModNoteInput{
		Subreddit: n.subreddit.DisplayName(),
		User:      user,
		Note:      note,
		Label:     label,
		Thing:     thing,
	})
}

// Delete deletes one note about user.
func (n *SubredditModNotes) Delete(ctx context.Context, user, noteID string) error {
	return deleteModNote(ctx, n.subreddit.reddit, n.subreddit.DisplayName(), user, noteID)
}

// ModNotes manages moderator notes across subreddits.
type ModNotes struct {
	reddit *Reddit
}

// ModNotes returns the session's moderator notes helper.
func (r *Reddit) ModNotes() *ModNotes {
	return &ModNotes{reddit: r}
}

// Recent yields the most recent note for each pair, or nil for pairs without
// notes. Pairs are requested 500 at a time.
func (n *ModNotes) Recent(ctx context.Context, pairs []ModNotePair) iter.Seq2[*ModNote, error] {
	return bulkModNotes(ctx, n.reddit, pairs)
}

// All yields every note for every combination of subreddits and users.
func (n *ModNotes) All(ctx context.Context, subreddits, users []string, opts *ModNotesOptions) iter.Seq2[*ModNote, error] {
	return allModNotes(ctx, n.reddit, subreddits, users, opts)
}

// Create adds a note.
func (n *ModNotes) Create(ctx context.Context, in ModNoteInput) (*ModNote, error) {
	return createModNote(ctx, n.reddit, in)
}

// Delete deletes a note.
func (n *ModNotes) Delete(ctx context.Context, subreddit, user, noteID string) error {
	return deleteModNote(ctx, n.reddit, subreddit, user, noteID)
}
