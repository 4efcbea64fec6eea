package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_UnmarshalNumericUnit(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"emergency_type":"high","unit_id":12,"issue_category":"Plumbing","description":"Leak"}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "high", req.EmergencyType)
	assert.Equal(t, UnitID("12"), req.UnitID)
	assert.Equal(t, "Plumbing", req.IssueCategory)
	assert.Equal(t, "Leak", req.Description)
	assert.Empty(t, req.RequestID)
}

func TestRequest_UnmarshalStringUnit(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"unit_id":"4B","issue_category":"HVAC"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "4B", req.UnitID.String())
}

func TestRequest_UnmarshalNullUnit(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"unit_id":null}`), &req)
	require.NoError(t, err)
	assert.Empty(t, req.UnitID)
}

func TestRequest_UnmarshalBadUnit(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"unit_id":{"floor":2}}`), &req)
	assert.Error(t, err)
}

func TestUnitID_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A UnitID `json:"a"`
		B UnitID `json:"b"`
	}{A: "7", B: "Penthouse"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":"Penthouse"}`, string(out))
}

func TestUnitID_MarshalNonCanonicalNumbers(t *testing.T) {
	tests := []struct {
		unit UnitID
		want string
	}{
		{"12", `12`},
		{"-3", `-3`},
		{"0", `0`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"-0", `"-0"`},
		{"99999999999999999999", `"99999999999999999999"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			out, err := json.Marshal(tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))

			var back UnitID
			require.NoError(t, json.Unmarshal(out, &back))
			assert.Equal(t, tt.unit, back)
		})
	}
}

func TestRequest_MarshalLeadingZeroUnit(t *testing.T) {
	out, err := json.Marshal(Request{UnitID: "007", IssueCategory: "HVAC"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"unit_id":"007"`)
}

func TestTicket_IsUrgent(t *testing.T) {
	assert.True(t, Ticket{Request: Request{EmergencyType: EmergencyHigh}}.IsUrgent())
	assert.False(t, Ticket{Request: Request{EmergencyType: EmergencyCritical}}.IsUrgent())
	assert.False(t, Ticket{Request: Request{EmergencyType: "HIGH"}}.IsUrgent())
}

func TestLandlord_Label(t *testing.T) {
	assert.Equal(t, "Maple Court", Landlord{ID: "ll-1", Name: "Maple Court"}.Label())
	assert.Equal(t, "ll-2", Landlord{ID: "ll-2"}.Label())
}
