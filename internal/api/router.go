package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Pipeline endpoints
	mux.HandleFunc("/api/resumes/upload", a.UploadResumeHandler)
	mux.HandleFunc("/api/resumes/extract-fields", a.ExtractFieldsHandler)
	mux.HandleFunc("/api/resumes/extract-skills", a.ExtractSkillsHandler)
	mux.HandleFunc("/api/resumes/finalize", a.FinalizeHandler)
	mux.HandleFunc("/api/resumes", a.ListResumesHandler)

	// Index & search endpoints
	mux.HandleFunc("/api/index/build", a.BuildIndexHandler)
	mux.HandleFunc("/api/search", a.SearchHandler)

	return mux
}
