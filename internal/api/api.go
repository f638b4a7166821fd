// Package api serves the lead workflow over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/geo"
	"github.com/sells-group/lead-cli/internal/leads"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/proposal"
	"github.com/sells-group/lead-cli/internal/search"
)

// Searcher runs lead searches.
type Searcher interface {
	Search(ctx context.Context, query string, loc *model.Location) (*model.SearchResult, error)
}

// ProposalGenerator writes proposals.
type ProposalGenerator interface {
	Generate(ctx context.Context, lead model.BusinessLead) (*model.Proposal, error)
}

// Server holds the handler dependencies.
type Server struct {
	Repo      *leads.Repository
	Searcher  Searcher
	Proposals ProposalGenerator
	// NearLocator builds a locator for a free-text place. Nil disables "near".
	NearLocator func(place string) geo.Locator
	// ProbeTimeout bounds "near" lookups.
	ProbeTimeout time.Duration
}

// Router builds the HTTP handler.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", s.listLeads)
		r.Post("/", s.addLead)
		r.Get("/stats", s.leadStats)
		r.Patch("/{id}/status", s.updateStatus)
		r.Post("/{id}/proposal", s.generateProposal)
	})
	r.Post("/search", s.search)

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listLeads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Repo.List())
}

func (s *Server) leadStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Repo.Stats())
}

func (s *Server) addLead(w http.ResponseWriter, r *http.Request) {
	var lead model.BusinessLead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(lead.ID) == "" || strings.TrimSpace(lead.Name) == "" {
		writeError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if !lead.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status "+string(lead.Status))
		return
	}
	if lead.PotentialServices == nil {
		lead.PotentialServices = model.PotentialServicesFor(lead.Website)
	}

	added, err := s.Repo.Add(r.Context(), lead)
	if err != nil {
		zap.L().Error("api: save lead", zap.String("lead_id", lead.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save lead")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	saved, _ := s.Repo.Get(lead.ID)
	writeJSON(w, status, saved)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseLeadStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.Repo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		zap.L().Error("api: update status", zap.String("lead_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	lead, _ := s.Repo.Get(id)
	writeJSON(w, http.StatusOK, lead)
}

type searchRequest struct {
	Query    string          `json:"query"`
	Location *model.Location `json:"location,omitempty"`
	Near     string          `json:"near,omitempty"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	loc := req.Location
	if loc == nil && req.Near != "" && s.NearLocator != nil {
		loc = geo.Probe(r.Context(), s.NearLocator(req.Near), s.ProbeTimeout)
	}

	res, err := s.Searcher.Search(r.Context(), req.Query, loc)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, search.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "query is required")
	case errors.Is(err, search.ErrSearchFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) generateProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, ok := s.Repo.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	p, err := s.Proposals.Generate(r.Context(), lead)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, p)
	case errors.Is(err, proposal.ErrProposalFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
