package graw

import (
	"context"
	"iter"
	"log/slog"
	"net/url"
	"time"

	"github.com/jamesprial/graw/internal"
)

const (
	// streamSeenSize bounds the identifiers a stream remembers.
	streamSeenSize = 301
	// streamMaxBackoff caps the delay between empty polls, in seconds.
	streamMaxBackoff = 16
	// streamRotation is the period of the limit rotation used while no
	// before cursor is known.
	streamRotation = 30
)

// StreamOptions configures a stream.
type StreamOptions struct {
	// PauseAfter controls pause signals, which Next reports as the zero value.
	// Nil never pauses, a negative value pauses after every poll and n >= 0
	// pauses once more than n consecutive polls found nothing new.
	PauseAfter *int
	// SkipExisting drops the items returned by the first poll.
	SkipExisting bool
}

// PauseAfter returns a pointer to n for StreamOptions.PauseAfter.
func PauseAfter(n int) *int {
	return &n
}

// Stream yields new items of a listing as they appear, oldest first. Empty
// polls back off exponentially up to about 16 seconds.
//
//	stream := reddit.Subreddit("golang").Stream().Comments(nil)
//	for {
//		comment, err := stream.Next(ctx)
//		if err != nil {
//			return err
//		}
//		fmt.Println(comment.Fullname())
//	}
type Stream[T any] struct {
	factory    func(*ListingOptions) *ListingGenerator[T]
	id         func(T) string
	pauseAfter *int
	skip       bool

	seen          *internal.BoundedSet
	counter       *internal.ExponentialCounter
	pending       []T
	pause         bool
	before        string
	withoutBefore int
	withoutNew    int

	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

func newStream[T any](r *Reddit, factory func(*ListingOptions) *ListingGenerator[T], id func(T) string, opts *StreamOptions) *Stream[T] {
	if opts == nil {
		opts = &StreamOptions{}
	}
	// size is a positive constant
	seen, _ := internal.NewBoundedSet(streamSeenSize)
	return &Stream[T]{
		factory:    factory,
		id:         id,
		pauseAfter: opts.PauseAfter,
		skip:       opts.SkipExisting,
		seen:       seen,
		counter:    internal.NewExponentialCounter(streamMaxBackoff),
		logger:     r.logger,
		sleep:      sleepContext,
	}
}

// Next returns the next new item, or the zero value as a pause signal.
// Request errors are returned as they happen; the stream stays usable.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if len(s.pending) > 0 {
			item := s.pending[0]
			s.pending = s.pending[1:]
			return item, nil
		}
		if s.pause {
			s.pause = false
			return zero, nil
		}
		if err := s.poll(ctx); err != nil {
			return zero, err
		}
	}
}

// All returns an endless iterator over the stream. It stops after the
// first error or when ctx is done.
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := s.Next(ctx)
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

func (s *Stream[T]) poll(ctx context.Context) error {
	limit := internal.MaxPageSize
	params := url.Values{}
	if s.before == "" {
		limit -= s.withoutBefore
		s.withoutBefore = (s.withoutBefore + 1) % streamRotation
	} else {
		params.Set("before", s.before)
	}

	items, err := s.factory(&ListingOptions{Limit: limit, Params: params}).Collect(ctx)
	if err != nil {
		return err
	}

	found := false
	newest := ""
	for i := len(items) - 1; i >= 0; i-- {
		id := s.id(items[i])
		if s.seen.Contains(id) {
			continue
		}
		found = true
		s.seen.Add(id)
		newest = id
		if !s.skip {
			s.pending = append(s.pending, items[i])
		}
	}
	s.before = newest
	s.skip = false

	s.logger.Debug("stream poll", "items", len(items), "new", len(s.pending), "before", s.before)

	switch {
	case s.pauseAfter != nil && *s.pauseAfter < 0:
		s.pause = true
	case found:
		s.counter.Reset()
		s.withoutNew = 0
	default:
		s.withoutNew++
		if s.pauseAfter != nil && s.withoutNew > *s.pauseAfter {
			s.counter.Reset()
			s.withoutNew = 0
			s.pause = true
			return nil
		}
		delay := s.counter.Next()
		s.logger.Debug("stream backoff", "delay", delay)
		return s.sleep(ctx, delay)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func commentID(c *Comment) string       { return c.Fullname() }
func submissionID(s *Submission) string { return s.Fullname() }
