// Package store provides the in-memory triage state for incoming maintenance
// requests. It holds the New and In Progress buckets, the operator's current
// selection and the transition between them, behind a small interface.
package store

import (
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/h0rv/feedboard/internal/domain"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrNoSelection indicates Assign was called with no ticket selected.
	ErrNoSelection = errors.New("no ticket selected")
	// ErrNoVendor indicates Assign was called with an empty vendor label.
	ErrNoVendor = errors.New("no vendor chosen")
	// ErrTicketNotFound indicates the requested ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCompleteUnsupported is returned by Complete until completion is wired
	// to the backend.
	ErrCompleteUnsupported = errors.New("completing tickets is not supported yet")
)

// Metrics are the derived counts shown in the dashboard header.
type Metrics struct {
	Total      int // Tickets in New
	Urgent     int // Tickets in New with emergency type "high"
	InProgress int // Tickets in In Progress
}

// Store manages the triage buckets for one operator session.
// It is not safe for concurrent use; callers mutate it from a single loop.
type Store struct {
	// Newest first
	newTickets []*domain.Ticket
	inProgress []*domain.Ticket

	// Points into newTickets, or nil
	selected *domain.Ticket

	// Server request ids already ingested, for redelivery detection
	seen map[string]struct{}

	entropy io.Reader
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for assignment timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithEntropy overrides the randomness source for generated ids.
func WithEntropy(r io.Reader) Option {
	return func(s *Store) {
		s.entropy = r
	}
}

// New creates a new empty Store instance.
func New(opts ...Option) *Store {
	s := &Store{
		seen:    make(map[string]struct{}),
		entropy: rand.Reader,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Monotonic entropy keeps ids unique and ordered within a millisecond.
	s.entropy = ulid.Monotonic(s.entropy, 0)
	return s
}

// Ingest adds a received request to the head of New and returns the ticket.
// Requests carrying a server id that was already ingested are dropped and
// Ingest returns false; requests without one are always added.
func (s *Store) Ingest(req domain.Request, receivedAt time.Time) (domain.Ticket, bool) {
	id := req.RequestID
	if id != "" {
		if _, dup := s.seen[id]; dup {
			return domain.Ticket{}, false
		}
		s.seen[id] = struct{}{}
	} else {
		id = s.nextID(receivedAt)
	}

	ticket := &domain.Ticket{
		Request:    req,
		ID:         id,
		Status:     domain.StatusNew,
		ReceivedAt: receivedAt,
	}
	s.newTickets = prepend(s.newTickets, ticket)
	return *ticket, true
}

// Select marks the New ticket with the given id as selected.
// Unknown ids and tickets outside New leave the selection unchanged.
func (s *Store) Select(id string) bool {
	for _, t := range s.newTickets {
		if t.ID == id {
			s.selected = t
			return true
		}
	}
	return false
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.selected = nil
}

// Selected returns a copy of the selected ticket.
func (s *Store) Selected() (domain.Ticket, bool) {
	if s.selected == nil {
		return domain.Ticket{}, false
	}
	return *s.selected, true
}

// Assign moves the selected ticket from New to the head of In Progress,
// stamping it with the vendor label and the assignment time, and clears the
// selection.
// With no selection (ErrNoSelection) or an empty vendor (ErrNoVendor) nothing
// changes.
func (s *Store) Assign(vendor string) (domain.Ticket, error) {
	if s.selected == nil {
		return domain.Ticket{}, ErrNoSelection
	}
	if vendor == "" {
		return domain.Ticket{}, ErrNoVendor
	}

	idx := s.indexOfNew(s.selected.ID)
	if idx < 0 {
		// Selection always points into New; recover by dropping it.
		s.selected = nil
		return domain.Ticket{}, ErrNoSelection
	}

	ticket := s.newTickets[idx]
	s.newTickets = append(s.newTickets[:idx:idx], s.newTickets[idx+1:]...)

	ticket.Status = domain.StatusInProgress
	ticket.Vendor = vendor
	ticket.AssignedAt = s.now()

	s.inProgress = prepend(s.inProgress, ticket)
	s.selected = nil

	return *ticket, nil
}

// Complete is the hook for closing an in-progress ticket. It only validates
// the id for now.
func (s *Store) Complete(id string) error {
	for _, t := range s.inProgress {
		if t.ID == id {
			return ErrCompleteUnsupported
		}
	}
	return ErrTicketNotFound
}

// Get retrieves a copy of a ticket from either bucket.
func (s *Store) Get(id string) (domain.Ticket, error) {
	for _, bucket := range [][]*domain.Ticket{s.newTickets, s.inProgress} {
		for _, t := range bucket {
			if t.ID == id {
				return *t, nil
			}
		}
	}
	return domain.Ticket{}, ErrTicketNotFound
}

// NewTickets returns copies of the New bucket, newest first.
func (s *Store) NewTickets() []domain.Ticket {
	return copyTickets(s.newTickets)
}

// InProgressTickets returns copies of the In Progress bucket, most recently
// assigned first.
func (s *Store) InProgressTickets() []domain.Ticket {
	return copyTickets(s.inProgress)
}

// Metrics computes the header counts from the current buckets.
func (s *Store) Metrics() Metrics {
	m := Metrics{
		Total:      len(s.newTickets),
		InProgress: len(s.inProgress),
	}
	for _, t := range s.newTickets {
		if t.IsUrgent() {
			m.Urgent++
		}
	}
	return m
}

// Reset discards all tickets and the selection.
func (s *Store) Reset() {
	s.newTickets = nil
	s.inProgress = nil
	s.selected = nil
	s.seen = make(map[string]struct{})
}

func (s *Store) nextID(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) indexOfNew(id string) int {
	for i, t := range s.newTickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func prepend(list []*domain.Ticket, t *domain.Ticket) []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(list)+1)
	out = append(out, t)
	return append(out, list...)
}

func copyTickets(list []*domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(list))
	for i, t := range list {
		out[i] = *t
	}
	return out
}
