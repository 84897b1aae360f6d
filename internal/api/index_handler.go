package api

import (
	"net/http"
)

type buildIndexResponse struct {
	Generation uint64   `json:"generation"`
	Indexed    int      `json:"indexed"`
	Skipped    int      `json:"skipped"`
	Reasons    []string `json:"reasons,omitempty"`
}

// BuildIndexHandler rebuilds the search index
// @Summary Rebuild the search index
// @Description Build a fresh index snapshot from all ready profiles and publish it atomically
// @Tags index
// @Produce json
// @Success 200 {object} buildIndexResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /index/build [post]
func (a *API) BuildIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	generation, report, err := a.builder.Rebuild(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildIndexResponse{
		Generation: generation,
		Indexed:    report.Indexed,
		Skipped:    report.Skipped,
		Reasons:    report.Reasons,
	})
}
