package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flowforge/flowforge/internal/campaign"
	"github.com/flowforge/flowforge/internal/gateway"
)

// StatusRequest is the request body for PUT /campaigns/{id}/status.
type StatusRequest struct {
	Status campaign.Status `json:"status"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Campaigns int    `json:"campaigns"`
}

// ErrorResponse is the error response envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleListCampaigns handles GET /api/v1/campaigns.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.gw.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list campaigns", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []campaign.Campaign{}
	}
	if s.metrics != nil {
		s.metrics.CampaignsTotal.Set(float64(len(campaigns)))
	}
	s.sendJSON(w, http.StatusOK, campaigns)
}

// handleGetCampaign handles GET /api/v1/campaigns/{id}.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.gw.Get(r.Context(), id)
	if errors.Is(err, gateway.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}

// handleCreateCampaign handles POST /api/v1/campaigns. The submitted ID,
// owner and timestamp are ignored; the gateway assigns them.
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c campaign.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if c.Name == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if c.Status != "" && !c.Status.Valid() {
		s.sendError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}
	if c.Status == "" {
		c.Status = campaign.StatusInactive
	}

	created, err := s.gw.Create(r.Context(), &c)
	if err != nil {
		s.logger.Error("failed to create campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	s.logger.Info("campaign created", "id", created.ID, "name", created.Name)
	s.sendJSON(w, http.StatusCreated, created)
}

// handleUpdateCampaign handles PATCH /api/v1/campaigns/{id}.
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch gateway.CampaignPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		s.sendError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}

	updated, err := s.gw.Update(r.Context(), id, patch)
	if errors.Is(err, gateway.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update campaign")
		return
	}

	s.sendJSON(w, http.StatusOK, updated)
}

// handleDeleteCampaign handles DELETE /api/v1/campaigns/{id}. Deletion is
// idempotent: deleting an absent campaign still returns 204.
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.gw.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}

	s.logger.Info("campaign deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateStatus handles PUT /api/v1/campaigns/{id}/status.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		s.sendError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}

	updated, err := s.gw.UpdateStatus(r.Context(), id, req.Status)
	if errors.Is(err, gateway.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update campaign status", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update campaign status")
		return
	}

	s.sendJSON(w, http.StatusOK, updated)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count := 0
	if campaigns, err := s.gw.List(r.Context()); err == nil {
		count = len(campaigns)
	}

	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   s.config.Version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Campaigns: count,
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, ErrorResponse{Error: msg})
}
