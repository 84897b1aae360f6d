package api

import (
	"io"
	"net/http"
)

// UploadResumeHandler ingests a resume document
// @Summary Upload a resume
// @Description Upload a resume document (PDF/DOC/DOCX) and create a pending candidate profile
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume document"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large or invalid (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	id, err := a.orchestrator.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"candidateId": id})
}

// ExtractFieldsHandler runs the field extraction stage
// @Summary Extract candidate fields
// @Description Run field extraction for a candidate (defaults to the most recently ingested)
// @Tags resumes
// @Accept json
// @Produce json
// @Param body body object false "Optional {candidateId}"
// @Success 200 {object} extract.Fields
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /resumes/extract-fields [post]
func (a *API) ExtractFieldsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := a.candidateRef(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fields, err := a.orchestrator.ExtractFields(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

type extractSkillsResponse struct {
	Skills     []string            `json:"skills"`
	Categories map[string][]string `json:"categories,omitempty"`
}

// ExtractSkillsHandler runs the skill extraction stage
// @Summary Extract candidate skills
// @Description Run skill extraction for a candidate (defaults to the most recently ingested)
// @Tags resumes
// @Accept json
// @Produce json
// @Param body body object false "Optional {candidateId}"
// @Success 200 {object} extractSkillsResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /resumes/extract-skills [post]
func (a *API) ExtractSkillsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := a.candidateRef(r)
	if err != nil {
		writeError(w, err)
		return
	}

	skills, categories, err := a.orchestrator.ExtractSkills(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if skills == nil {
		skills = []string{}
	}
	writeJSON(w, http.StatusOK, extractSkillsResponse{Skills: skills, Categories: categories})
}

// FinalizeHandler marks a candidate ready for indexing
// @Summary Finalize a candidate
// @Description Mark a candidate ready; only ready profiles enter index builds
// @Tags resumes
// @Accept json
// @Produce json
// @Param body body object false "Optional {candidateId}"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /resumes/finalize [post]
func (a *API) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := a.candidateRef(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := a.orchestrator.Finalize(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"candidateId": id, "status": "ready"})
}

// ListResumesHandler lists all stored candidate profiles
// @Summary List candidates
// @Tags resumes
// @Produce json
// @Success 200 {array} storage.CandidateProfile
// @Router /resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profiles, err := a.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
