package store

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/h0rv/feedboard/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
var (
	baseTime     = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	assignedTime = baseTime.Add(5 * time.Minute)
)

func newTestStore() *Store {
	return New(WithClock(func() time.Time { return assignedTime }))
}

func leakRequest() domain.Request {
	return domain.Request{
		EmergencyType: domain.EmergencyHigh,
		UnitID:        "12",
		IssueCategory: "Plumbing",
		Description:   "Leak",
	}
}

func createTestRequests() []domain.Request {
	return []domain.Request{
		{EmergencyType: domain.EmergencyLow, UnitID: "1", IssueCategory: "General", Description: "Squeaky door"},
		{EmergencyType: domain.EmergencyHigh, UnitID: "2", IssueCategory: "Plumbing", Description: "Burst pipe"},
		{EmergencyType: domain.EmergencyMedium, UnitID: "3", IssueCategory: "HVAC", Description: "No heat"},
		{EmergencyType: domain.EmergencyHigh, UnitID: "4", IssueCategory: "Electrical", Description: "Sparking outlet"},
		{EmergencyType: domain.EmergencyCritical, UnitID: "5", IssueCategory: "Plumbing", Description: "Flooding"},
	}
}

// ingestAll feeds requests in arrival order and returns the resulting tickets.
func ingestAll(t *testing.T, s *Store, reqs []domain.Request) []domain.Ticket {
	t.Helper()
	out := make([]domain.Ticket, 0, len(reqs))
	for i, req := range reqs {
		ticket, ok := s.Ingest(req, baseTime.Add(time.Duration(i)*time.Second))
		require.True(t, ok)
		out = append(out, ticket)
	}
	return out
}

// TestNew verifies store initialization
func TestNew(t *testing.T) {
	s := New()
	assert.NotNil(t, s)
	assert.Empty(t, s.NewTickets())
	assert.Empty(t, s.InProgressTickets())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, Metrics{}, s.Metrics())
}

// TestIngest_NewestFirst verifies N ingests give N tickets, most recent at index 0
func TestIngest_NewestFirst(t *testing.T) {
	s := newTestStore()
	reqs := createTestRequests()
	ingested := ingestAll(t, s, reqs)

	tickets := s.NewTickets()
	require.Len(t, tickets, len(reqs))

	for i, ticket := range tickets {
		expected := ingested[len(ingested)-1-i]
		assert.Equal(t, expected.ID, ticket.ID)
		assert.Equal(t, domain.StatusNew, ticket.Status)
	}
	assert.Equal(t, "Flooding", tickets[0].Description)
	assert.Equal(t, "Squeaky door", tickets[len(tickets)-1].Description)
}

func TestIngest_StampsTicket(t *testing.T) {
	s := newTestStore()
	ticket, ok := s.Ingest(leakRequest(), baseTime)
	require.True(t, ok)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.StatusNew, ticket.Status)
	assert.Equal(t, baseTime, ticket.ReceivedAt)
	assert.Empty(t, ticket.Vendor)
	assert.True(t, ticket.AssignedAt.IsZero())
	assert.Equal(t, leakRequest(), ticket.Request)
}

// TestIngest_UniqueIDsInBurst verifies ids stay unique when many requests share a timestamp
func TestIngest_UniqueIDsInBurst(t *testing.T) {
	s := newTestStore()
	ids := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		ticket, ok := s.Ingest(leakRequest(), baseTime)
		require.True(t, ok)
		ids[ticket.ID] = struct{}{}
	}
	assert.Len(t, ids, 500)
}

// TestIngest_DeterministicIDs verifies ids come from the receipt time and the entropy source, in arrival order
func TestIngest_DeterministicIDs(t *testing.T) {
	newStore := func() *Store {
		return New(
			WithClock(func() time.Time { return assignedTime }),
			WithEntropy(bytes.NewReader(make([]byte, 64))),
		)
	}

	first := ingestAll(t, newStore(), createTestRequests())
	second := ingestAll(t, newStore(), createTestRequests())

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)

		id, err := ulid.ParseStrict(first[i].ID)
		require.NoError(t, err)
		assert.Equal(t, ulid.Timestamp(first[i].ReceivedAt), id.Time())

		if i > 0 {
			assert.Less(t, first[i-1].ID, first[i].ID)
		}
	}
}

func TestIngest_NoDedupWithoutServerID(t *testing.T) {
	s := newTestStore()
	s.Ingest(leakRequest(), baseTime)
	s.Ingest(leakRequest(), baseTime)

	assert.Len(t, s.NewTickets(), 2)
	assert.Equal(t, 2, s.Metrics().Urgent)
}

func TestIngest_DropsRedeliveredServerID(t *testing.T) {
	s := newTestStore()
	req := leakRequest()
	req.RequestID = "req-42"

	first, ok := s.Ingest(req, baseTime)
	require.True(t, ok)
	assert.Equal(t, "req-42", first.ID)

	_, ok = s.Ingest(req, baseTime.Add(time.Second))
	assert.False(t, ok)
	assert.Len(t, s.NewTickets(), 1)
}

// TestScenario_LeakAssignedToPlumber walks the documented end-to-end scenario
func TestScenario_LeakAssignedToPlumber(t *testing.T) {
	s := newTestStore()

	ticket, ok := s.Ingest(leakRequest(), baseTime)
	require.True(t, ok)
	assert.Len(t, s.NewTickets(), 1)
	assert.Equal(t, 1, s.Metrics().Urgent)

	require.True(t, s.Select(ticket.ID))
	assigned, err := s.Assign("Pro Plumbing Co.")
	require.NoError(t, err)

	assert.Len(t, s.NewTickets(), 0)
	inProgress := s.InProgressTickets()
	require.Len(t, inProgress, 1)
	assert.Equal(t, "Pro Plumbing Co.", inProgress[0].Vendor)
	assert.Equal(t, domain.StatusInProgress, inProgress[0].Status)
	assert.Equal(t, assignedTime, inProgress[0].AssignedAt)
	assert.Equal(t, assigned, inProgress[0])

	_, selected := s.Selected()
	assert.False(t, selected)
	assert.Equal(t, Metrics{Total: 0, Urgent: 0, InProgress: 1}, s.Metrics())
}

// TestAssign_MovesSelectionToHead verifies counts shift by exactly one and the ticket heads In Progress
func TestAssign_MovesSelectionToHead(t *testing.T) {
	s := newTestStore()
	ingested := ingestAll(t, s, createTestRequests())

	// Assign an older ticket first, then a newer one
	require.True(t, s.Select(ingested[1].ID))
	_, err := s.Assign("Pro Plumbing Co.")
	require.NoError(t, err)

	require.True(t, s.Select(ingested[3].ID))
	beforeNew := len(s.NewTickets())
	beforeProgress := len(s.InProgressTickets())

	_, err = s.Assign("Spark Electric")
	require.NoError(t, err)

	assert.Equal(t, beforeNew-1, len(s.NewTickets()))
	assert.Equal(t, beforeProgress+1, len(s.InProgressTickets()))

	inProgress := s.InProgressTickets()
	assert.Equal(t, ingested[3].ID, inProgress[0].ID)
	assert.Equal(t, "Spark Electric", inProgress[0].Vendor)
	assert.Equal(t, ingested[1].ID, inProgress[1].ID)

	for _, ticket := range s.NewTickets() {
		assert.NotEqual(t, ingested[3].ID, ticket.ID)
		assert.NotEqual(t, ingested[1].ID, ticket.ID)
	}
}

// TestAssign_WithoutSelection verifies the no-selection precondition is a no-op
func TestAssign_WithoutSelection(t *testing.T) {
	s := newTestStore()
	ingestAll(t, s, createTestRequests())
	before := s.NewTickets()

	_, err := s.Assign("Pro Plumbing Co.")
	assert.ErrorIs(t, err, ErrNoSelection)

	// Repeating it changes nothing either
	_, err = s.Assign("Pro Plumbing Co.")
	assert.ErrorIs(t, err, ErrNoSelection)

	assert.Equal(t, before, s.NewTickets())
	assert.Empty(t, s.InProgressTickets())
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestAssign_EmptyVendorKeepsSelection(t *testing.T) {
	s := newTestStore()
	ticket, _ := s.Ingest(leakRequest(), baseTime)
	require.True(t, s.Select(ticket.ID))

	_, err := s.Assign("")
	assert.ErrorIs(t, err, ErrNoVendor)

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, ticket.ID, selected.ID)
	assert.Len(t, s.NewTickets(), 1)
	assert.Empty(t, s.InProgressTickets())
}

// TestSelect_UnknownID verifies an unknown id leaves the selection unchanged
func TestSelect_UnknownID(t *testing.T) {
	s := newTestStore()
	ingested := ingestAll(t, s, createTestRequests())

	// No selection stays no selection
	assert.False(t, s.Select("missing"))
	_, ok := s.Selected()
	assert.False(t, ok)

	// Existing selection is preserved
	require.True(t, s.Select(ingested[2].ID))
	assert.False(t, s.Select("missing"))
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, ingested[2].ID, selected.ID)
}

func TestSelect_InProgressTicketRejected(t *testing.T) {
	s := newTestStore()
	ingested := ingestAll(t, s, createTestRequests())

	require.True(t, s.Select(ingested[0].ID))
	_, err := s.Assign("CoolAir HVAC")
	require.NoError(t, err)

	assert.False(t, s.Select(ingested[0].ID))
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestClearSelection(t *testing.T) {
	s := newTestStore()
	ticket, _ := s.Ingest(leakRequest(), baseTime)
	require.True(t, s.Select(ticket.ID))

	s.ClearSelection()

	_, ok := s.Selected()
	assert.False(t, ok)
	_, err := s.Assign("Pro Plumbing Co.")
	assert.ErrorIs(t, err, ErrNoSelection)
}

// TestMetrics_UrgentRecomputed verifies urgent counts track every ingest and assign
func TestMetrics_UrgentRecomputed(t *testing.T) {
	s := newTestStore()

	countHigh := func() int {
		n := 0
		for _, ticket := range s.NewTickets() {
			if ticket.EmergencyType == "high" {
				n++
			}
		}
		return n
	}

	for i, req := range createTestRequests() {
		s.Ingest(req, baseTime.Add(time.Duration(i)*time.Second))
		assert.Equal(t, countHigh(), s.Metrics().Urgent, "after ingest %d", i)
	}
	assert.Equal(t, 2, s.Metrics().Urgent)

	// Assign every ticket, one at a time, newest first
	for len(s.NewTickets()) > 0 {
		head := s.NewTickets()[0]
		require.True(t, s.Select(head.ID))
		_, err := s.Assign("HandyFix General Repair")
		require.NoError(t, err)

		m := s.Metrics()
		assert.Equal(t, countHigh(), m.Urgent)
		assert.Equal(t, len(s.NewTickets()), m.Total)
		assert.Equal(t, len(s.InProgressTickets()), m.InProgress)
	}
	assert.Equal(t, Metrics{Total: 0, Urgent: 0, InProgress: 5}, s.Metrics())
}

func TestComplete_IsStub(t *testing.T) {
	s := newTestStore()
	ticket, _ := s.Ingest(leakRequest(), baseTime)

	// Not in progress yet
	assert.ErrorIs(t, s.Complete(ticket.ID), ErrTicketNotFound)

	require.True(t, s.Select(ticket.ID))
	_, err := s.Assign("Pro Plumbing Co.")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Complete(ticket.ID), ErrCompleteUnsupported)

	inProgress := s.InProgressTickets()
	require.Len(t, inProgress, 1)
	assert.Equal(t, domain.StatusInProgress, inProgress[0].Status)
}

// TestAccessors_ReturnCopies verifies callers cannot mutate stored tickets
func TestAccessors_ReturnCopies(t *testing.T) {
	s := newTestStore()
	ticket, _ := s.Ingest(leakRequest(), baseTime)

	tickets := s.NewTickets()
	tickets[0].Vendor = "Tampered"
	tickets[0].Status = domain.StatusCompleted

	got, err := s.Get(ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Vendor)
	assert.Equal(t, domain.StatusNew, got.Status)
}

func TestGet(t *testing.T) {
	s := newTestStore()
	ingested := ingestAll(t, s, createTestRequests())

	require.True(t, s.Select(ingested[0].ID))
	_, err := s.Assign("Pro Plumbing Co.")
	require.NoError(t, err)

	for _, want := range ingested {
		got, err := s.Get(want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	}

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestReset(t *testing.T) {
	s := newTestStore()
	req := leakRequest()
	req.RequestID = "req-1"
	ticket, _ := s.Ingest(req, baseTime)
	require.True(t, s.Select(ticket.ID))

	s.Reset()

	assert.Empty(t, s.NewTickets())
	assert.Empty(t, s.InProgressTickets())
	_, ok := s.Selected()
	assert.False(t, ok)

	// Server ids are forgotten too
	_, ok = s.Ingest(req, baseTime)
	assert.True(t, ok)
}

func TestIngest_LargeFeed(t *testing.T) {
	s := newTestStore()
	const n = 200
	for i := 0; i < n; i++ {
		req := leakRequest()
		req.UnitID = domain.UnitID(fmt.Sprint(i))
		s.Ingest(req, baseTime.Add(time.Duration(i)*time.Millisecond))
	}

	tickets := s.NewTickets()
	require.Len(t, tickets, n)
	assert.Equal(t, domain.UnitID(fmt.Sprint(n-1)), tickets[0].UnitID)
	assert.Equal(t, domain.UnitID("0"), tickets[n-1].UnitID)
}
