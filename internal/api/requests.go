package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/h0rv/feedboard/internal/domain"
)

// CreateRequestResponse is the backend's reply to a created request.
// Fields are optional; older backends reply with an empty body.
type CreateRequestResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CreateRequest submits a maintenance request on behalf of a tenant.
// The backend pushes it to the landlord's stream.
func (c *Client) CreateRequest(ctx context.Context, req domain.Request) (*CreateRequestResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}

	var resp CreateRequestResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/vendor/create-request", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return &resp, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// ValidateRequest checks the fields the tenant form requires.
func ValidateRequest(req domain.Request) error {
	var errs []error
	if strings.TrimSpace(req.IssueCategory) == "" {
		errs = append(errs, errors.New("issue category is required"))
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if req.UnitID == "" {
		errs = append(errs, errors.New("unit id is required"))
	}
	if req.EmergencyType == "" {
		errs = append(errs, errors.New("emergency type is required"))
	}
	return errors.Join(errs...)
}
