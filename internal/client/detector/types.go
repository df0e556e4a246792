package detector

import (
	"zombie-detector/internal/model"
)

// HealthResponse is the payload of GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	TrackingEnabled bool   `json:"tracking_enabled"`
}

// StatesResponse is the payload of GET /api/v1/states.
type StatesResponse struct {
	States  map[string]int    `json:"states"`
	Aliases map[string]string `json:"aliases"`
}

// CriteriaResponse is the payload of GET /api/v1/criteria.
type CriteriaResponse struct {
	Criteria     []string            `json:"criteria"`
	Combinations map[string][]string `json:"combinations"`
	Descriptions map[string]string   `json:"descriptions"`
}

// KilledCheckResponse is the payload of GET /api/v1/zombies/{id}/killed.
type KilledCheckResponse struct {
	ZombieID   string              `json:"zombie_id"`
	IsKilled   bool                `json:"is_killed"`
	KilledInfo *model.KilledZombie `json:"killed_info"`
}

// CleanupResponse is the payload of POST /api/v1/zombies/cleanup.
type CleanupResponse struct {
	DaysToKeep     int `json:"days_to_keep"`
	HistoryRemoved int `json:"history_removed"`
	KilledRemoved  int `json:"killed_removed"`
}

// APIError is the error payload returned by the detection API.
type APIError struct {
	Message            string   `json:"error"`
	InvalidHostIndices []int    `json:"invalid_host_indices,omitempty"`
	RequiredFields     []string `json:"required_fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}
