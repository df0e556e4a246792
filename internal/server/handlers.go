package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"zombie-detector/internal/classifier"
	"zombie-detector/internal/config"
	"zombie-detector/internal/model"
)

const (
	defaultSinceHours = 24
	defaultDaysToKeep = 30
)

type errorResponse struct {
	Error              string   `json:"error"`
	InvalidHostIndices []int    `json:"invalid_host_indices,omitempty"`
	RequiredFields     []string `json:"required_fields,omitempty"`
}

type healthResponse struct {
	Status          string    `json:"status"`
	Version         string    `json:"version"`
	Timestamp       time.Time `json:"timestamp"`
	TrackingEnabled bool      `json:"tracking_enabled"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		Version:         s.version,
		Timestamp:       time.Now().UTC(),
		TrackingEnabled: s.tracker != nil,
	})
}

func (s *Server) getStates(w http.ResponseWriter, r *http.Request) {
	states := s.states
	if states == nil {
		states = classifier.DefaultStates()
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"states":  states,
		"aliases": classifier.AllAliases(),
	})
}

func (s *Server) getCriteria(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"criteria":       classifier.CriteriaFields,
		"combinations":   classifier.Combinations(),
		"descriptions":   classifier.Descriptions(),
		"codes_by_count": classifier.CodesBySize(),
	})
}

// detectionRequest is the envelope form of the detection request body.
// The bare-array form is still accepted for compatibility.
type detectionRequest struct {
	Hosts          []json.RawMessage `json:"hosts"`
	States         map[string]int    `json:"states"`
	ZombiesOnly    bool              `json:"zombies_only"`
	IncludeSummary bool              `json:"include_summary"`
}

type detectionResponse struct {
	Hosts    []*model.EnrichedHost   `json:"hosts"`
	Tracking *model.TrackingReport   `json:"tracking,omitempty"`
	Summary  *model.DetectionSummary `json:"summary,omitempty"`
}

// postDetection accepts either a JSON array of host records or an
// envelope with hosts plus a one-off state policy and output options,
// validates each record structurally and runs the full pipeline. A
// structurally invalid batch is rejected as a whole with the offending
// indices.
func (s *Server) postDetection(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
			Error: "failed to read request body",
		})
		return
	}

	var req detectionRequest
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(body, &req.Hosts); err != nil {
			s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
				Error: "request body must be a JSON array of host records",
			})
			return
		}
	} else if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
			Error: "request body must be a host array or a detection request object",
		})
		return
	}
	rawHosts := req.Hosts
	if len(rawHosts) == 0 {
		s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
			Error: "host list is empty",
		})
		return
	}

	var invalid []int
	for i, raw := range rawHosts {
		if missing := model.MissingHostFields(raw); len(missing) > 0 {
			invalid = append(invalid, i)
		}
	}
	if len(invalid) > 0 {
		s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
			Error:              "host records are missing required fields",
			InvalidHostIndices: invalid,
			RequiredFields:     model.RequiredHostFields,
		})
		return
	}

	hosts := make([]*model.HostRecord, len(rawHosts))
	for i, raw := range rawHosts {
		var h model.HostRecord
		if err := json.Unmarshal(raw, &h); err != nil {
			s.writeError(w, "zombie-detection", http.StatusBadRequest, errorResponse{
				Error:              "failed to decode host record",
				InvalidHostIndices: []int{i},
			})
			return
		}
		hosts[i] = &h
	}

	// A request-level policy overlays the server's configured one.
	var states map[string]int
	if req.States != nil {
		base := s.states
		if base == nil {
			base = classifier.DefaultStates()
		}
		states = config.MergeStates(base, req.States)
	}

	result, err := s.processor.ProcessWithStates(r.Context(), hosts, states)
	if err != nil {
		s.logger.Error().Err(err).Msg("detection failed")
		s.writeError(w, "zombie-detection", http.StatusInternalServerError, errorResponse{
			Error: "detection failed",
		})
		return
	}

	zombies := model.FilterZombies(result.Hosts)
	s.metrics.detectionRuns.Inc()
	s.metrics.hostsProcessed.Add(float64(len(result.Hosts)))
	s.metrics.zombiesFound.Add(float64(len(zombies)))
	if result.Tracking != nil {
		s.metrics.zombiesKilled.Add(float64(result.Tracking.Stats.KilledZombies))
	}

	resp := detectionResponse{Hosts: result.Hosts, Tracking: result.Tracking}
	if req.ZombiesOnly {
		resp.Hosts = zombies
	}
	if req.IncludeSummary {
		resp.Summary = model.NewDetectionSummary(result.Hosts)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getKilled(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.trackingDisabled(w, "zombies-killed")
		return
	}

	sinceHours := queryInt(r, "since_hours", defaultSinceHours)
	entries, err := s.tracker.KilledSince(sinceHours)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load killed registry")
		s.writeError(w, "zombies-killed", http.StatusInternalServerError, errorResponse{
			Error: "failed to load killed registry",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, model.NewKilledSummary(entries, sinceHours))
}

func (s *Server) getZombieKilled(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.trackingDisabled(w, "zombie-killed")
		return
	}

	id := chi.URLParam(r, "id")
	entry, err := s.tracker.IsKilled(id)
	if err != nil {
		s.logger.Error().Err(err).Str("zombie_id", id).Msg("failed to check killed registry")
		s.writeError(w, "zombie-killed", http.StatusInternalServerError, errorResponse{
			Error: "failed to check killed registry",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"zombie_id":   id,
		"is_killed":   entry != nil,
		"killed_info": entry,
	})
}

func (s *Server) getZombieLifecycle(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.trackingDisabled(w, "zombie-lifecycle")
		return
	}

	id := chi.URLParam(r, "id")
	lc, err := s.tracker.Lifecycle(id)
	if err != nil {
		s.logger.Error().Err(err).Str("zombie_id", id).Msg("failed to build lifecycle")
		s.writeError(w, "zombie-lifecycle", http.StatusInternalServerError, errorResponse{
			Error: "failed to build lifecycle",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, lc)
}

func (s *Server) postCleanup(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.trackingDisabled(w, "cleanup")
		return
	}

	daysToKeep := queryInt(r, "days_to_keep", defaultDaysToKeep)
	if daysToKeep < 1 {
		s.writeError(w, "cleanup", http.StatusBadRequest, errorResponse{
			Error: "days_to_keep must be at least 1",
		})
		return
	}

	result, err := s.tracker.Cleanup(daysToKeep)
	if err != nil {
		s.logger.Error().Err(err).Msg("cleanup failed")
		s.writeError(w, "cleanup", http.StatusInternalServerError, errorResponse{
			Error: "cleanup failed",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"days_to_keep":    daysToKeep,
		"history_removed": result.HistoryRemoved,
		"killed_removed":  result.KilledRemoved,
	})
}

func (s *Server) trackingDisabled(w http.ResponseWriter, endpoint string) {
	s.writeError(w, endpoint, http.StatusServiceUnavailable, errorResponse{
		Error: "tracking is disabled",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, resp errorResponse) {
	s.metrics.requestErrors.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	s.writeJSON(w, status, resp)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
