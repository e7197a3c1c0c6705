package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	graw "github.com/jamesprial/graw"
)

// Event is the JSON document published for every streamed item.
type Event struct {
	Type      string          `json:"type"`
	Fullname  string          `json:"fullname"`
	Subreddit string          `json:"subreddit"`
	SeenAt    time.Time       `json:"seen_at"`
	Data      json.RawMessage `json:"data"`
}

// newEvent snapshots the loaded attributes of item.
func newEvent(subreddit string, item interface {
	graw.Entity
	Fullname() string
}) (*Event, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      item.TypeName(),
		Fullname:  item.Fullname(),
		Subreddit: subreddit,
		SeenAt:    time.Now().UTC(),
		Data:      data,
	}, nil
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, subject string, e *Event) error
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// natsPublisher publishes events as JSON. Trace context from ctx is
// injected into the message headers.
type natsPublisher struct {
	conn msgPublisher
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, e *Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return p.conn.PublishMsg(msg)
}

// writerPublisher writes one JSON document per line.
type writerPublisher struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newWriterPublisher(w io.Writer) *writerPublisher {
	return &writerPublisher{enc: json.NewEncoder(w)}
}

func (p *writerPublisher) Publish(_ context.Context, _ string, e *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(e)
}
