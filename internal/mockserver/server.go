// Package mockserver is a development stand-in for the property-management
// backend. It serves the per-landlord request stream, accepts created
// requests and fans them out to the matching landlord's streams.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/h0rv/feedboard/internal/api"
	"github.com/h0rv/feedboard/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for the mock backend handlers.
type Server struct {
	logger    *slog.Logger
	hub       *Hub
	metrics   *Metrics
	registry  *prometheus.Registry
	keepAlive time.Duration
}

// Option configures the server.
type Option func(*Server)

// WithKeepAlive sets how often idle streams receive a comment line.
// Non-positive values keep the default.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// New creates a mock backend with its own metrics registry.
func New(logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		logger:    logger,
		hub:       NewHub(32),
		metrics:   NewMetrics(reg),
		registry:  reg,
		keepAlive: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the fan-out hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the backend endpoints to the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/stream-requests/{landlordID}", s.handleStream)
	r.Post("/api/vendor/create-request", s.handleCreateRequest)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.LandlordID == "" {
		writeError(w, http.StatusBadRequest, "landlord id is required")
		return
	}

	resp := s.Publish(req, "api")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// Publish stamps req with an id and status and pushes it to the landlord's
// open streams.
func (s *Server) Publish(req domain.Request, source string) api.CreateRequestResponse {
	if req.RequestID == "" {
		req.RequestID = ulid.Make().String()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}

	delivered, dropped := s.hub.Publish(req)
	s.metrics.RequestsCreated.WithLabelValues(req.EmergencyType, source).Inc()
	s.metrics.RequestsPublished.Add(float64(delivered))
	s.metrics.RequestsDropped.Add(float64(dropped))

	s.logger.Info("request published",
		"request_id", req.RequestID,
		"landlord_id", req.LandlordID,
		"emergency_type", req.EmergencyType,
		"delivered", delivered,
		"dropped", dropped,
	)

	return api.CreateRequestResponse{
		RequestID: req.RequestID,
		Status:    req.Status,
		Message:   fmt.Sprintf("delivered to %d stream(s)", delivered),
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	landlordID := chi.URLParam(r, "landlordID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, unsubscribe := s.hub.Subscribe(landlordID)
	defer unsubscribe()

	s.metrics.StreamsOpen.Inc()
	s.metrics.StreamsTotal.Inc()
	defer s.metrics.StreamsOpen.Dec()

	logger := s.logger.With("landlord_id", landlordID)
	logger.Info("stream opened", "remote", r.RemoteAddr)
	defer logger.Info("stream closed")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case req := <-ch:
			data, err := json.Marshal(req)
			if err != nil {
				logger.Error("marshal request", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", req.RequestID, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

var (
	sampleCategories = []string{"plumbing", "electrical", "hvac", "general"}
	sampleEmergency  = []string{domain.EmergencyLow, domain.EmergencyMedium, domain.EmergencyHigh, domain.EmergencyCritical}
	sampleIssues     = map[string][]string{
		"plumbing":   {"Leak under kitchen sink", "Toilet keeps running", "No hot water"},
		"electrical": {"Outlet sparks when used", "Hallway lights flicker", "Breaker trips nightly"},
		"hvac":       {"AC blowing warm air", "Furnace makes banging noise", "Thermostat unresponsive"},
		"general":    {"Front door lock sticks", "Window will not close", "Loose stair railing"},
	}
)

// SampleRequest returns a plausible request for landlordID.
func SampleRequest(r *rand.Rand, landlordID string) domain.Request {
	category := sampleCategories[r.IntN(len(sampleCategories))]
	issues := sampleIssues[category]
	return domain.Request{
		EmergencyType: sampleEmergency[r.IntN(len(sampleEmergency))],
		UnitID:        domain.UnitID(fmt.Sprint(100 + r.IntN(400))),
		IssueCategory: category,
		Description:   issues[r.IntN(len(issues))],
		TenantID:      fmt.Sprintf("tenant-%03d", r.IntN(1000)),
		LandlordID:    landlordID,
	}
}

// Generate publishes a sample request for landlordID every interval until
// ctx is done.
func (s *Server) Generate(ctx context.Context, landlordID string, interval time.Duration) {
	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Publish(SampleRequest(r, landlordID), "generator")
		}
	}
}
