// Package stream subscribes to the backend's per-landlord feed of maintenance
// requests and turns it into events for the UI loop.
//
// A Subscriber owns at most one open channel at a time. Switching landlords
// closes the old channel, and waits for its reader to exit, before the new one
// is dialed.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/h0rv/feedboard/internal/domain"
)

// Dialer opens the raw event stream for a landlord.
type Dialer interface {
	Dial(ctx context.Context, landlordID string) (io.ReadCloser, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, landlordID string) (io.ReadCloser, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, landlordID string) (io.ReadCloser, error) {
	return f(ctx, landlordID)
}

// Event is emitted on the Subscriber's event channel. Sequence is the value
// returned by the Subscribe call that opened the channel, so a consumer can
// tell a reconnect on the same landlord apart from the channel it replaced.
type Event interface {
	Landlord() string
	Sequence() uint64
}

// Opened reports that the channel for LandlordID is live.
type Opened struct {
	LandlordID string
	Seq        uint64
}

// Received carries one decoded request.
type Received struct {
	LandlordID string
	Seq        uint64
	Request    domain.Request
	ReceivedAt time.Time
}

// Disconnected reports that the channel failed or ended.
// Retrying is true when the reconnect policy will dial again.
type Disconnected struct {
	LandlordID string
	Seq        uint64
	Err        error
	Retrying   bool
}

func (e Opened) Landlord() string       { return e.LandlordID }
func (e Received) Landlord() string     { return e.LandlordID }
func (e Disconnected) Landlord() string { return e.LandlordID }

func (e Opened) Sequence() uint64       { return e.Seq }
func (e Received) Sequence() uint64     { return e.Seq }
func (e Disconnected) Sequence() uint64 { return e.Seq }

// ReconnectPolicy controls redialing after a channel failure.
// The zero value never reconnects.
type ReconnectPolicy struct {
	Enabled         bool
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      int // 0 means unlimited
}

func (p ReconnectPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.Reset()
	return b
}

// Subscriber manages the live channel for the current landlord.
type Subscriber struct {
	dialer Dialer
	logger *slog.Logger
	policy ReconnectPolicy
	now    func() time.Time

	events chan Event

	mu         sync.Mutex
	landlordID string
	seq        uint64
	cancel     context.CancelFunc
	done       chan struct{}
	closed     bool
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Subscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReconnect sets the reconnect policy.
func WithReconnect(p ReconnectPolicy) Option {
	return func(s *Subscriber) {
		s.policy = p
	}
}

// WithClock overrides the receipt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Subscriber) {
		s.now = now
	}
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(s *Subscriber) {
		s.events = make(chan Event, n)
	}
}

// New creates an idle Subscriber.
func New(dialer Dialer, opts ...Option) *Subscriber {
	s := &Subscriber{
		dialer: dialer,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		events: make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the channel events are delivered on. It is never closed.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// LandlordID returns the landlord currently subscribed to, or "".
func (s *Subscriber) LandlordID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.landlordID
}

// Subscribe closes the current channel, discarding its undelivered events,
// and, for a non-empty id, opens a new one. Calling it again with the same id
// reconnects. It returns the sequence number stamped on the new channel's
// events, or 0 once the Subscriber is closed.
func (s *Subscriber) Subscribe(landlordID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	s.stopLocked()

	s.seq++
	seq := s.seq
	s.landlordID = landlordID
	if landlordID == "" {
		s.logger.Info("stream idle, no landlord id")
		return seq
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		s.run(ctx, landlordID, seq)
	}()
	return seq
}

// Close tears down the current channel. The Subscriber cannot be reused.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.landlordID = ""
	s.closed = true
}

// stopLocked cancels the active channel and waits for its reader to exit.
func (s *Subscriber) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	// Events still buffered belong to the channel just closed.
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

func (s *Subscriber) run(ctx context.Context, landlordID string, seq uint64) {
	logger := s.logger.With("landlord_id", landlordID, "seq", seq)
	bo := s.policy.newBackOff()
	retries := 0

	for {
		err := s.session(ctx, logger, landlordID, seq, func() {
			bo.Reset()
			retries = 0
		})
		if ctx.Err() != nil {
			return
		}

		retrying := s.policy.Enabled && (s.policy.MaxRetries == 0 || retries < s.policy.MaxRetries)
		logger.Warn("stream disconnected", "error", err, "retrying", retrying)
		if !s.emit(ctx, Disconnected{LandlordID: landlordID, Seq: seq, Err: err, Retrying: retrying}) {
			return
		}
		if !retrying {
			return
		}

		retries++
		wait := bo.NextBackOff()
		logger.Debug("reconnecting", "attempt", retries, "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials once and pumps messages until the channel fails or ctx ends.
func (s *Subscriber) session(ctx context.Context, logger *slog.Logger, landlordID string, seq uint64, onOpen func()) error {
	body, err := s.dialer.Dial(ctx, landlordID)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}

	// Closing the body unblocks the reader when ctx is cancelled. The deferred
	// call returns only after the body is closed, whichever side closes it.
	var once sync.Once
	closeBody := func() { once.Do(func() { _ = body.Close() }) }
	stop := context.AfterFunc(ctx, closeBody)
	defer func() {
		stop()
		closeBody()
	}()

	logger.Info("stream opened")
	onOpen()
	if !s.emit(ctx, Opened{LandlordID: landlordID, Seq: seq}) {
		return ctx.Err()
	}

	reader := NewReader(body)
	for {
		msg, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("stream closed by server")
			}
			return fmt.Errorf("read stream: %w", err)
		}

		// Requests arrive as unnamed events. Named ones (pings, status) are
		// not tickets.
		if msg.Event != "" && msg.Event != "message" {
			logger.Debug("skipping named event", "event", msg.Event, "id", msg.ID)
			continue
		}

		req, err := DecodeRequest([]byte(msg.Data))
		if err != nil {
			logger.Warn("dropping malformed message", "error", err, "event", msg.Event, "id", msg.ID)
			continue
		}

		if !s.emit(ctx, Received{LandlordID: landlordID, Seq: seq, Request: req, ReceivedAt: s.now()}) {
			return ctx.Err()
		}
	}
}

func (s *Subscriber) emit(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case s.events <- ev:
		return true
	}
}

// DecodeRequest parses one message payload. The payload must be a JSON object.
func DecodeRequest(data []byte) (domain.Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return domain.Request{}, fmt.Errorf("decode request: expected JSON object")
	}
	var req domain.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
