package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-search/internal/extract"
	"resume-search/internal/index"
	"resume-search/internal/pipeline"
	"resume-search/internal/search"
	"resume-search/internal/storage"
)

type fixedFieldExtractor struct{ fields extract.Fields }

func (f *fixedFieldExtractor) Extract(context.Context, []byte, string) (*extract.Fields, error) {
	out := f.fields
	return &out, nil
}

type fixedSkillExtractor struct {
	skills     []string
	categories map[string][]string
}

func (f *fixedSkillExtractor) ExtractSkills(context.Context, []byte, string) ([]string, map[string][]string, error) {
	return append([]string(nil), f.skills...), f.categories, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := storage.NewMemoryStore()
	orchestrator := pipeline.NewOrchestrator(store,
		&fixedFieldExtractor{fields: extract.Fields{Name: "Jane Doe", Email: "jane@x.com"}},
		&fixedSkillExtractor{skills: []string{"Go", "SQL"}},
		t.TempDir())
	builder := index.NewBuilder(store)
	engine := search.NewEngine(builder, 0, 0, 0)

	srv := httptest.NewServer(NewRouter(NewAPI(store, orchestrator, builder, engine)))
	t.Cleanup(srv.Close)
	return srv
}

func uploadResume(t *testing.T, srv *httptest.Server, filename string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/resumes/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON(t *testing.T, url, payload string) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)
	return resp
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadResume(t, srv, "resume.txt", []byte("plain text"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchBeforeIndexBuild(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/search?query=go")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestExtractFieldsWithoutAnyUpload(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/resumes/extract-fields", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuildIndexWithoutReadyProfiles(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/index/build", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFullPipelineContract(t *testing.T) {
	srv := newTestServer(t)

	// Upload
	resp := uploadResume(t, srv, "jane.pdf", []byte("%PDF-1.4 fake resume"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	uploaded := decodeBody(t, resp)
	candidateID, _ := uploaded["candidateId"].(string)
	require.NotEmpty(t, candidateID)

	// Extract fields: empty body targets the most recently ingested.
	resp = postJSON(t, srv.URL+"/api/resumes/extract-fields", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fields := decodeBody(t, resp)
	assert.Equal(t, "Jane Doe", fields["name"])
	assert.Equal(t, "jane@x.com", fields["email"])

	// Extract skills with an explicit candidate reference.
	resp = postJSON(t, srv.URL+"/api/resumes/extract-skills", `{"candidateId":"`+candidateID+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	skills := decodeBody(t, resp)
	assert.ElementsMatch(t, []interface{}{"Go", "SQL"}, skills["skills"])

	// Finalize
	resp = postJSON(t, srv.URL+"/api/resumes/finalize", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	finalized := decodeBody(t, resp)
	assert.Equal(t, "ready", finalized["status"])

	// Build index: generation 1
	resp = postJSON(t, srv.URL+"/api/index/build", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	built := decodeBody(t, resp)
	assert.EqualValues(t, 1, built["generation"])
	assert.EqualValues(t, 1, built["indexed"])
	assert.EqualValues(t, 0, built["skipped"])

	// Empty query is rejected, never an empty-but-successful list.
	resp, err := http.Get(srv.URL + "/api/search?query=%20%20")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Search: exact response field names the existing client depends on.
	resp, err = http.Get(srv.URL + "/api/search?query=go")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)

	matches, ok := result["matches"].([]interface{})
	require.True(t, ok)
	require.Len(t, matches, 1)

	match, ok := matches[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, candidateID, match["id"])
	assert.Equal(t, "Jane Doe", match["name"])
	assert.Equal(t, "jane@x.com", match["email"])
	assert.Equal(t, "Go", match["matched_skill"])
	assert.EqualValues(t, 100, match["score"])
	assert.Contains(t, match, "lastUpdated")

	// List endpoint exposes the stored profile.
	resp, err = http.Get(srv.URL + "/api/resumes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profiles []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, candidateID, profiles[0]["id"])
	assert.Equal(t, "ready", profiles[0]["status"])
}

func TestExtractSkillsBeforeFields(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadResume(t, srv, "jane.pdf", []byte("doc"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/resumes/extract-skills", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
