package api

import (
	"net/http"

	"resume-search/internal/search"
)

type searchResponse struct {
	Matches []search.Match `json:"matches"`
}

// SearchHandler answers a ranked keyword/skill query
// @Summary Search candidates
// @Description Rank candidates against a free-text skill/keyword query
// @Tags search
// @Produce json
// @Param query query string true "Search query"
// @Success 200 {object} searchResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /search [get]
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	matches, err := a.engine.Search(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []search.Match{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Matches: matches})
}
