package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	graw "github.com/jamesprial/graw"
)

func main() {
	// Credentials come from REDDIT_* environment variables or a .env file.
	config := graw.ConfigFromEnv()
	if config.ClientID == "" || config.ClientSecret == "" {
		log.Fatal("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET environment variables are required")
	}
	if config.UserAgent == "" {
		config.UserAgent = "example-bot/1.0 by YourUsername"
	}

	// Route structured logs to stdout; adjust the level as needed.
	config.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client, err := graw.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to Reddit: %v", err)
	}
	fmt.Println("Successfully connected to Reddit!")

	if !client.ReadOnly() {
		me, err := client.Me(ctx)
		if err != nil {
			log.Printf("Failed to get user info: %v", err)
		} else {
			name, _ := me.Name(ctx)
			fmt.Printf("Authenticated as user: %s\n", name)
		}
	}

	sub := client.Subreddit("golang")
	if subscribers, err := sub.Subscribers(ctx); err != nil {
		log.Printf("Failed to get subreddit info: %v", err)
	} else {
		fmt.Printf("\nSubreddit: r/%s (%d subscribers)\n", sub.DisplayName(), subscribers)
	}

	// The generator pages through results transparently.
	fmt.Println("\nHot posts from r/golang:")
	posts, err := sub.Hot(&graw.ListingOptions{Limit: 5}).Collect(ctx)
	if err != nil {
		log.Fatalf("Failed to get hot posts: %v", err)
	}
	for i, post := range posts {
		title, _ := post.Title(ctx)
		score, _ := post.Score(ctx)
		fmt.Printf("%d. %s (score: %d)\n", i+1, title, score)
	}
	if len(posts) == 0 {
		return
	}

	// Load the first post's comments and expand a few "load more" placeholders.
	post := posts[0]
	forest, err := post.Comments(ctx)
	if err != nil {
		log.Fatalf("Failed to get comments: %v", err)
	}
	skipped, err := forest.ReplaceMore(ctx, &graw.ReplaceMoreOptions{Limit: 3})
	if err != nil {
		log.Printf("Failed to expand comments: %v", err)
	}

	tree := graw.NewCommentTree(forest)
	fmt.Printf("\nLoaded %d comments, %d levels deep (%d placeholders left)\n",
		tree.Count(), tree.GetDepth(), len(skipped))

	it := graw.NewCommentIterator(forest, &graw.TraversalOptions{MaxDepth: 2, SkipMore: true})
	shown := 0
	for node, depth := range it.All() {
		c, ok := node.(*graw.Comment)
		if !ok {
			continue
		}
		body, _ := c.Body(ctx)
		fmt.Printf("%*s- %.80s\n", depth*2, "", body)
		shown++
		if shown == 10 {
			break
		}
	}
}
