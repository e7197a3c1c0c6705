// Package test_generators builds deterministic Reddit-shaped JSON payloads
// for tests and benchmarks.
package test_generators

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Thing is a decoded {"kind": ..., "data": ...} object.
type Thing = map[string]any

// CommentGenerator generates comment threads as Reddit returns them.
type CommentGenerator struct {
	rand      *rand.Rand
	next      int
	templates []string
	users     []string
}

// NewCommentGenerator creates a new comment generator. The same seed always
// yields the same threads.
func NewCommentGenerator(seed int64) *CommentGenerator {
	return &CommentGenerator{
		rand: rand.New(rand.NewSource(seed)),
		templates: []string{
			"I completely agree with %s.",
			"Actually, %s is not entirely accurate.",
			"Great point about %s!",
			"Can someone elaborate on %s?",
			"Counterpoint: %s. What do you all think?",
		},
		users: []string{
			"thoughtful_commenter", "expert_analyst", "casual_observer", "debate_enthusiast",
			"helpful_explainer", "skeptic_user", "supportive_member", "critical_thinker",
		},
	}
}

// ThreadOptions controls the shape of a generated thread.
type ThreadOptions struct {
	// LinkID is the fullname of the submission, t3_abc by default.
	LinkID string
	// TopLevel is the number of top-level comments.
	TopLevel int
	// MaxDepth bounds nesting. Depth 1 means no replies.
	MaxDepth int
	// MaxReplies bounds the replies of each comment.
	MaxReplies int
	// MoreEvery places a "more" placeholder after every n-th reply list.
	// Zero disables placeholders.
	MoreEvery int
}

// Thread is a generated comment thread.
type Thread struct {
	// Comments holds the top-level things, replies nested under "replies".
	Comments []Thing
	// CommentCount is the number of t1 things generated.
	CommentCount int
	// MoreCount is the number of "more" placeholders generated.
	MoreCount int
	// Depth is the deepest nesting level reached.
	Depth int
}

// Thread generates a thread.
func (cg *CommentGenerator) Thread(opts ThreadOptions) *Thread {
	if opts.LinkID == "" {
		opts.LinkID = "t3_abc"
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 1
	}
	t := &Thread{}
	lists := 0
	t.Comments = cg.level(t, &opts, opts.LinkID, opts.TopLevel, 1, &lists)
	return t
}

func (cg *CommentGenerator) level(t *Thread, opts *ThreadOptions, parentID string, count, depth int, lists *int) []Thing {
	out := make([]Thing, 0, count+1)
	for range count {
		c := cg.Comment(parentID, opts.LinkID)
		t.CommentCount++
		t.Depth = max(t.Depth, depth)

		if depth < opts.MaxDepth && opts.MaxReplies > 0 {
			n := cg.rand.Intn(opts.MaxReplies + 1)
			if n > 0 {
				replies := cg.level(t, opts, c["data"].(map[string]any)["name"].(string), n, depth+1, lists)
				c["data"].(map[string]any)["replies"] = Listing("", replies...)
			}
		}
		out = append(out, c)
	}

	*lists++
	if opts.MoreEvery > 0 && *lists%opts.MoreEvery == 0 {
		out = append(out, cg.More(parentID, 1+cg.rand.Intn(5)))
		t.MoreCount++
	}
	return out
}

// Comment generates a single comment without replies.
func (cg *CommentGenerator) Comment(parentID, linkID string) Thing {
	id := cg.id()
	return Thing{"kind": "t1", "data": map[string]any{
		"id":          id,
		"name":        "t1_" + id,
		"parent_id":   parentID,
		"link_id":     linkID,
		"author":      cg.users[cg.rand.Intn(len(cg.users))],
		"body":        fmt.Sprintf(cg.templates[cg.rand.Intn(len(cg.templates))], "item "+id),
		"score":       cg.score(),
		"created_utc": float64(1700000000 + cg.rand.Intn(86400)),
		"edited":      false,
		"replies":     "",
	}}
}

// More generates a "more" placeholder with count children ids.
func (cg *CommentGenerator) More(parentID string, count int) Thing {
	children := make([]any, count)
	for i := range children {
		children[i] = cg.id()
	}
	id := cg.id()
	return Thing{"kind": "more", "data": map[string]any{
		"id":        id,
		"name":      "t1_" + id,
		"parent_id": parentID,
		"count":     count,
		"children":  children,
	}}
}

// score is skewed towards small values the way comment scores are.
func (cg *CommentGenerator) score() int {
	switch r := cg.rand.Float32(); {
	case r < 0.6:
		return cg.rand.Intn(10) + 1
	case r < 0.9:
		return cg.rand.Intn(100) + 10
	default:
		return cg.rand.Intn(2000) + 100
	}
}

func (cg *CommentGenerator) id() string {
	cg.next++
	return "g" + strconv.FormatInt(int64(cg.next), 36)
}
