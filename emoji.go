package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Emoji is a custom subreddit emoji. Names are case-sensitive.
type Emoji struct {
	base
	subreddit *Subreddit
}

func newEmoji(s *Subreddit, name string) *Emoji {
	e := &Emoji{subreddit: s}
	e.base = newBase(s.reddit, "Emoji", "", "name")
	e.attrs["name"] = name
	e.fetcher = e.fetch
	return e
}

func newEmojiFromData(s *Subreddit, name string, data map[string]any) *Emoji {
	e := newEmoji(s, name)
	e.load(data)
	e.fetched = true
	return e
}

// Name returns the emoji name.
func (e *Emoji) Name() string {
	return asString(e.attrs["name"])
}

// URL returns the image URL.
func (e *Emoji) URL(ctx context.Context) (string, error) {
	return e.GetString(ctx, "url")
}

func (e *Emoji) fetch(ctx context.Context) (map[string]any, error) {
	emojis, err := e.subreddit.Emojis(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range emojis {
		if other.Name() == e.Name() {
			return other.attrs, nil
		}
	}
	return nil, &pkgerrs.MissingObjectError{
		Message: "subreddit " + e.subreddit.DisplayName() + " does not have the emoji " + e.Name(),
	}
}
