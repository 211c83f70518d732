package common

import (
	"encoding/json"
	"net/http"
	"time"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Days      int    `json:"days,omitempty"`
}

// RespondJSON sends data wrapped in the standard envelope
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	RespondWithMeta(w, status, data, nil)
}

// RespondWithMeta sends data with response metadata
func RespondWithMeta(w http.ResponseWriter, status int, data interface{}, meta *MetaInfo) {
	if meta != nil && meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// RespondCreated sends 201 with the id of the stored resource
func RespondCreated(w http.ResponseWriter, id string, extra map[string]interface{}) {
	body := map[string]interface{}{"id": id}
	for k, v := range extra {
		body[k] = v
	}
	RespondJSON(w, http.StatusCreated, body)
}

// RespondNoContent sends a 204 response
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
