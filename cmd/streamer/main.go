// Command streamer follows a subreddit and publishes every new comment and
// submission as JSON to NATS, or to stdout when no NATS URL is given.
//
// Environment Variables Required:
//   - REDDIT_CLIENT_ID: Your Reddit app's client ID
//   - REDDIT_CLIENT_SECRET: Your Reddit app's client secret
//
// Usage:
//
//	go run ./cmd/streamer -subreddit golang -nats nats://localhost:4222
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	graw "github.com/jamesprial/graw"
)

func main() {
	subreddit := flag.String("subreddit", "golang", "subreddit to follow")
	natsURL := flag.String("nats", "", "NATS URL (if empty, output JSON to stdout)")
	prefix := flag.String("subject", "graw.stream", "NATS subject prefix")
	skipExisting := flag.Bool("skip-existing", false, "ignore items present before the stream started")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := graw.ConfigFromEnv()
	config.Logger = logger
	if config.UserAgent == "" {
		config.UserAgent = "graw-streamer/1.0"
	}
	client, err := graw.NewClient(config)
	if err != nil {
		logger.Error("create client", "error", err)
		os.Exit(1)
	}

	var pub Publisher = newWriterPublisher(os.Stdout)
	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL, nats.Name("graw-streamer"))
		if err != nil {
			logger.Error("nats connect", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		pub = &natsPublisher{conn: nc}
		logger.Info("publishing to NATS", "prefix", *prefix)
	}

	s := &streamer{
		client:    client,
		publisher: pub,
		subreddit: *subreddit,
		prefix:    *prefix,
		opts:      &graw.StreamOptions{SkipExisting: *skipExisting},
		logger:    logger,
	}
	if err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stream stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

type streamer struct {
	client    *graw.Reddit
	publisher Publisher
	subreddit string
	prefix    string
	opts      *graw.StreamOptions
	logger    *slog.Logger
}

// run follows comments and submissions concurrently until ctx ends or
// either stream fails.
func (s *streamer) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return follow(ctx, s, "comments", s.client.Subreddit(s.subreddit).Stream().Comments(s.opts))
	})
	g.Go(func() error {
		return follow(ctx, s, "submissions", s.client.Subreddit(s.subreddit).Stream().Submissions(s.opts))
	})
	return g.Wait()
}

type streamedItem interface {
	graw.Entity
	Fullname() string
}

func follow[T streamedItem](ctx context.Context, s *streamer, kind string, stream *graw.Stream[T]) error {
	subject := fmt.Sprintf("%s.%s.%s", s.prefix, s.subreddit, kind)
	for item, err := range stream.All(ctx) {
		if err != nil {
			return fmt.Errorf("%s stream: %w", kind, err)
		}
		event, err := newEvent(s.subreddit, item)
		if err != nil {
			s.logger.Warn("encode item", "kind", kind, "error", err)
			continue
		}
		if err := s.publisher.Publish(ctx, subject, event); err != nil {
			s.logger.Warn("publish", "subject", subject, "fullname", event.Fullname, "error", err)
			continue
		}
		s.logger.Debug("published", "subject", subject, "fullname", event.Fullname)
	}
	return ctx.Err()
}
