// Package api serves the management HTTP API: provisioning state, on-demand
// provisioning, topology-change notifications and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sdn-te/internal/engine"
	"sdn-te/internal/model"
)

// Provisioner is the part of the engine the API drives.
type Provisioner interface {
	State() engine.State
	Provision(ctx context.Context, mode model.Mode) (*engine.Report, error)
}

// Notifier accepts topology-change triggers.
type Notifier interface {
	Notify(hint model.Mode)
	Phase() engine.Phase
}

// DefaultCycleTimeout bounds a provisioning cycle started through the API.
const DefaultCycleTimeout = 2 * time.Minute

// Server holds the API dependencies.
type Server struct {
	Engine     Provisioner
	Reconciler Notifier
	Logger     *slog.Logger
	// CycleTimeout bounds API-triggered cycles. Cycles are detached from the
	// request, so a client that disconnects does not interrupt a push.
	CycleTimeout time.Duration
}

// Handler returns the router. API routes live under /api/v1; metrics are
// served at /metrics.
func (s *Server) Handler() http.Handler {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/rules", s.getRules)
		r.Post("/provision/{mode}", s.provision)
		r.Post("/topology/changed", s.topologyChanged)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type stateResponse struct {
	Mode           model.Mode   `json:"mode"`
	Phase          engine.Phase `json:"phase,omitempty"`
	InstalledRules int          `json:"installed_rules"`
}

type errorResponse struct {
	Error  string         `json:"error"`
	Report *engine.Report `json:"report,omitempty"`
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	st := s.Engine.State()
	resp := stateResponse{Mode: st.Mode, InstalledRules: len(st.Rules)}
	if s.Reconciler != nil {
		resp.Phase = s.Reconciler.Phase()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRules(w http.ResponseWriter, r *http.Request) {
	rules := s.Engine.State().Rules
	if rules == nil {
		rules = []model.Rule{}
	}
	s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) provision(w http.ResponseWriter, r *http.Request) {
	mode, err := model.ParseMode(chi.URLParam(r, "mode"))
	if err != nil || mode == model.ModeNone {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown mode: " + chi.URLParam(r, "mode")})
		return
	}

	timeout := s.CycleTimeout
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	defer cancel()

	report, err := s.Engine.Provision(ctx, mode)
	if err != nil {
		s.Logger.Error("Provisioning via API failed", "mode", mode, "error", err)
		s.writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Report: report})
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) topologyChanged(w http.ResponseWriter, r *http.Request) {
	if s.Reconciler == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "reconciliation is not running"})
		return
	}
	hint, err := model.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.Reconciler.Notify(hint)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTopologyLoad):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrRulePush), errors.Is(err, engine.ErrRuleWithdraw):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Debug("Failed to write response", "error", err)
	}
}
