// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// MetadataHandler handles dataset metadata requests.
type MetadataHandler struct {
	deps Dependencies
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(deps Dependencies) *MetadataHandler {
	return &MetadataHandler{deps: deps}
}

// HandleMetadata handles GET /metadata requests.
func (h *MetadataHandler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	meta, err := h.deps.Metadata(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
