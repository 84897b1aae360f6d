package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"resume-search/internal/index"
	"resume-search/internal/pipeline"
	"resume-search/internal/search"
	"resume-search/internal/storage"
)

type API struct {
	store        storage.Store
	orchestrator *pipeline.Orchestrator
	builder      *index.Builder
	engine       *search.Engine
}

func NewAPI(store storage.Store, orchestrator *pipeline.Orchestrator, builder *index.Builder, engine *search.Engine) *API {
	return &API{
		store:        store,
		orchestrator: orchestrator,
		builder:      builder,
		engine:       engine,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes and renders the
// detail verbatim; there is no silent fallback.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrInvalidDocument), errors.Is(err, search.ErrEmptyQuery):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, index.ErrRebuildInProgress),
		errors.Is(err, search.ErrIndexNotBuilt),
		errors.Is(err, pipeline.ErrStageOrder):
		status = http.StatusConflict
	case errors.Is(err, index.ErrNoIndexableProfiles):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrExtractionFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// candidateRef resolves the candidate reference for a stage call: an
// explicit {candidateId} body when present, otherwise the most recently
// ingested candidate.
func (a *API) candidateRef(r *http.Request) (string, error) {
	var body struct {
		CandidateID string `json:"candidateId"`
	}
	if r.Body != nil {
		// A missing or empty body simply means "latest".
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if body.CandidateID != "" {
		return body.CandidateID, nil
	}
	return a.store.Latest(r.Context())
}
