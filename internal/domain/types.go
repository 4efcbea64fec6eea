// Package domain defines the normalized types for maintenance requests and the
// tickets the triage board builds from them.
// These types are independent of the backend's transport (SSE, REST).
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Request is a maintenance request as pushed by the backend feed or posted by
// a tenant. Only EmergencyType, UnitID, IssueCategory and Description are
// guaranteed on the stream; the rest are optional.
type Request struct {
	RequestID     string `json:"request_id,omitempty"`  // Server-assigned id, if the backend sends one
	EmergencyType string `json:"emergency_type"`        // "low", "medium", "high", "critical" (not enforced)
	UnitID        UnitID `json:"unit_id"`               // Unit number or label
	IssueCategory string `json:"issue_category"`        // e.g. "plumbing", "electrical"
	Description   string `json:"description"`           // Free text from the tenant
	TenantID      string `json:"tenant_id,omitempty"`   // Submitting tenant
	LandlordID    string `json:"landlord_id,omitempty"` // Owning landlord (stream channel key)
	Status        string `json:"status,omitempty"`      // Backend status, e.g. "PENDING"
	PhotoURL      string `json:"photo_url,omitempty"`   // Optional photo of the issue
}

// Ticket is a Request as held by the triage board, with locally assigned
// metadata.
type Ticket struct {
	Request

	ID         string    // Store-assigned id (server RequestID when present)
	Status     Status    // Board bucket
	ReceivedAt time.Time // Client-local receipt time, display only
	Vendor     string    // Vendor label, set on assignment
	AssignedAt time.Time // Set on assignment
}

// IsUrgent reports whether the ticket counts toward the urgent total.
func (t Ticket) IsUrgent() bool {
	return t.EmergencyType == EmergencyHigh
}

// Status is the board bucket a ticket occupies.
type Status string

// Status constants. StatusCompleted is terminal and not reachable yet.
const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// EmergencyType constants as used by the tenant request form.
const (
	EmergencyLow      = "low"
	EmergencyMedium   = "medium"
	EmergencyHigh     = "high"
	EmergencyCritical = "critical"
)

// RequestStatusPending is the backend status of a freshly created request.
const RequestStatusPending = "PENDING"

// DefaultVendors is the static vendor list offered by the assignment panel
// when the configuration does not provide one.
var DefaultVendors = []string{
	"Pro Plumbing Co.",
	"Spark Electric",
	"CoolAir HVAC",
	"HandyFix General Repair",
}

// Landlord is a landlord account the operator can watch.
type Landlord struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Label returns the display name, falling back to the id.
func (l Landlord) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// UnitID holds a unit identifier that the backend may send as a JSON number
// or a JSON string.
type UnitID string

// UnmarshalJSON accepts a number, a string or null.
func (u *UnitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UnitID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unit_id: expected number or string, got %s", data)
	}
	*u = UnitID(n.String())
	return nil
}

// MarshalJSON emits canonical integers as JSON numbers and anything else,
// including "007" and "+5", as a string so the label survives unchanged.
func (u UnitID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(u), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(u) {
		return []byte(u), nil
	}
	return json.Marshal(string(u))
}

// String returns the unit identifier as text.
func (u UnitID) String() string {
	return string(u)
}
