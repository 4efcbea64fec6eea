package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/h0rv/feedboard/internal/domain"
	"github.com/h0rv/feedboard/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time check: the client dials streams for the subscriber.
var _ stream.Dialer = (*Client)(nil)

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrNoBaseURL)

	_, err = New("not a url")
	assert.Error(t, err)

	c, err := New("http://localhost:8003/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8003", c.BaseURL())
}

func TestStreamURL_EscapesLandlord(t *testing.T) {
	c, err := New("http://localhost:8003")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8003/stream-requests/abc-123", c.StreamURL("abc-123"))
	assert.Equal(t, "http://localhost:8003/stream-requests/a%2Fb", c.StreamURL("a/b"))
}

func TestDial_ReadsStream(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"unit_id\":1}\n\n")
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	body, err := c.Dial(context.Background(), "landlord-9")
	require.NoError(t, err)
	defer body.Close()

	msg, err := stream.NewReader(body).Next()
	require.NoError(t, err)
	assert.Equal(t, `{"unit_id":1}`, msg.Data)
	assert.Equal(t, "/stream-requests/landlord-9", gotPath)
	assert.Equal(t, "text/event-stream", gotAccept)
}

func TestDial_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown landlord", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Dial(context.Background(), "nobody")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "unknown landlord")
}

func TestDial_WrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Dial(context.Background(), "landlord-1")
	assert.ErrorContains(t, err, "content type")
}

func TestCreateRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/vendor/create-request", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"request_id":"req-1","status":"PENDING"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	resp, err := c.CreateRequest(context.Background(), domain.Request{
		EmergencyType: domain.EmergencyHigh,
		UnitID:        "12",
		IssueCategory: "plumbing",
		Description:   "Leak under sink",
		TenantID:      "tenant-1",
		LandlordID:    "landlord-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.RequestID)

	assert.Equal(t, float64(12), got["unit_id"])
	assert.Equal(t, "PENDING", got["status"])
	assert.Equal(t, "landlord-1", got["landlord_id"])
	assert.NotContains(t, got, "photo_url")
}

func TestCreateRequest_EmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	resp, err := c.CreateRequest(context.Background(), domain.Request{
		EmergencyType: "low", UnitID: "1", IssueCategory: "general", Description: "Door",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RequestID)
}

func TestCreateRequest_Invalid(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = c.CreateRequest(context.Background(), domain.Request{UnitID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue category is required")
	assert.Contains(t, err.Error(), "description is required")
	assert.Contains(t, err.Error(), "emergency type is required")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	assert.NoError(t, c.Health(context.Background()))
}
