// Package graw is a Reddit API client built around lazily loaded entities.
//
// # Overview
//
// A Reddit session hands out entities such as submissions, comments,
// subreddits and redditors. An entity created from an identifier holds only
// that identifier; the first access to any other attribute fetches it once.
// Entities that arrive inside responses are already loaded.
//
// # Features
//
//   - OAuth2 authentication (password or application-only grant) with token renewal
//   - Client-side rate limiting that honours Reddit's rate limit headers
//   - Objectification of every response into typed entities
//   - Listing generators that page through results on demand
//   - Streams of new comments, submissions and inbox items
//   - Comment forests with MoreComments expansion
//   - Structured logging via log/slog and OpenTelemetry spans per request
//
// # Quick Start
//
//	config := &graw.Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		UserAgent:    "linux:myapp:1.0 (by /u/yourusername)",
//	}
//
//	reddit, err := graw.NewClient(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ConfigFromEnv reads the same settings from REDDIT_* environment variables
// and an optional .env file.
//
// # Connection Lifecycle
//
// NewClient does no network traffic. The first request authenticates and
// prepares the transport; Connect does the same eagerly so that credential
// problems surface at startup.
//
// # Common Operations
//
// Page through a subreddit:
//
//	gen := reddit.Subreddit("golang").Hot(&graw.ListingOptions{Limit: 25})
//	for submission, err := range gen.All(ctx) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		title, _ := submission.Title(ctx)
//		fmt.Println(title)
//	}
//
// Load a submission's full comment tree:
//
//	submission := reddit.Submission("2gmzqe")
//	comments, err := submission.Comments(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := comments.ReplaceMore(ctx, &graw.ReplaceMoreOptions{Limit: graw.NoLimit}); err != nil {
//		log.Fatal(err)
//	}
//	for _, node := range comments.List() {
//		if c, ok := node.(*graw.Comment); ok {
//			body, _ := c.Body(ctx)
//			fmt.Println(body)
//		}
//	}
//
// Stream new comments:
//
//	stream := reddit.Subreddit("golang").Stream().Comments(nil)
//	for comment, err := range stream.All(ctx) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(comment.Fullname())
//	}
//
// # Error Handling
//
// Errors are concrete types from pkg/errors, inspected with errors.As:
//
//	var apiErr *pkgerrs.RedditAPIError
//	if errors.As(err, &apiErr) {
//		fmt.Println(apiErr.First().ErrorType)
//	}
//
// Operations that need a user identity return *errors.ReadOnlyError in an
// application-only session.
//
// # Concurrency
//
// A session is meant for one goroutine at a time. Entities, listing
// generators, streams and forests keep unsynchronised state. Use one
// session per goroutine or guard it yourself.
package graw
