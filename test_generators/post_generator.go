package test_generators

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// PostGenerator generates submissions and listing pages.
type PostGenerator struct {
	rand           *rand.Rand
	next           int
	titleTemplates []string
	users          []string
	flairs         []string
}

// NewPostGenerator creates a new post generator. The same seed always
// yields the same posts.
func NewPostGenerator(seed int64) *PostGenerator {
	return &PostGenerator{
		rand: rand.New(rand.NewSource(seed)),
		titleTemplates: []string{
			"[Discussion] %s",
			"PSA: %s",
			"TIL about %s",
			"Analysis: %s",
			"Question about %s",
		},
		users: []string{
			"tech_enthusiast", "casual_redditor", "expert_analyst", "curious_mind",
			"seasoned_veteran", "newbie_user", "power_user", "lurker_account",
		},
		flairs: []string{"Discussion", "Question", "News", "Guide", "Technical"},
	}
}

// Post generates a submission in subreddit.
func (pg *PostGenerator) Post(subreddit string) Thing {
	pg.next++
	id := "p" + strconv.FormatInt(int64(pg.next), 36)
	title := fmt.Sprintf(pg.titleTemplates[pg.rand.Intn(len(pg.titleTemplates))], "topic "+id)
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "_"))
	isSelf := pg.rand.Float32() < 0.5

	data := map[string]any{
		"id":                      id,
		"name":                    "t3_" + id,
		"title":                   title,
		"author":                  pg.users[pg.rand.Intn(len(pg.users))],
		"subreddit":               subreddit,
		"score":                   pg.rand.Intn(5000),
		"num_comments":            pg.rand.Intn(300),
		"created_utc":             float64(1700000000 + pg.rand.Intn(86400)),
		"link_flair_text":         pg.flairs[pg.rand.Intn(len(pg.flairs))],
		"permalink":               fmt.Sprintf("/r/%s/comments/%s/%s/", subreddit, id, slug),
		"is_self":                 isSelf,
		"over_18":                 pg.rand.Float32() < 0.05,
		"spoiler":                 pg.rand.Float32() < 0.02,
		"edited":                  false,
		"selftext":                "",
		"url":                     "https://example.com/" + id,
		"subreddit_name_prefixed": "r/" + subreddit,
	}
	if isSelf {
		data["selftext"] = "Body of " + title
		data["url"] = fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/%s/", subreddit, id, slug)
	}
	return Thing{"kind": "t3", "data": data}
}

// Pages splits total submissions into listing pages of size pageSize,
// chained through their after cursors. The last page has no cursor.
func (pg *PostGenerator) Pages(subreddit string, total, pageSize int) []Thing {
	var pages []Thing
	for start := 0; start < total; start += pageSize {
		n := min(pageSize, total-start)
		children := make([]Thing, n)
		for i := range children {
			children[i] = pg.Post(subreddit)
		}
		after := ""
		if start+n < total {
			after = children[n-1]["data"].(map[string]any)["name"].(string)
		}
		pages = append(pages, Listing(after, children...))
	}
	return pages
}

// Listing wraps children in a Listing thing.
func Listing(after string, children ...Thing) Thing {
	items := make([]any, len(children))
	for i, c := range children {
		items[i] = c
	}
	var cursor any
	if after != "" {
		cursor = after
	}
	return Thing{"kind": "Listing", "data": map[string]any{"after": cursor, "before": nil, "children": items}}
}
