// Package pipeline drives a candidate's document through the extraction
// stages and commits the results to the profile store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-search/internal/document"
	"resume-search/internal/extract"
	"resume-search/internal/storage"
)

var (
	// ErrInvalidDocument is returned for an empty payload or a filename
	// outside the accepted extensions (pdf, doc, docx).
	ErrInvalidDocument = errors.New("invalid document")

	// ErrExtractionFailed wraps an adapter failure. The profile's prior
	// status and fields are left untouched, so the call is retryable.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrStageOrder is returned when a stage is called before its
	// precondition stage has completed.
	ErrStageOrder = errors.New("extraction stage not reached yet")
)

// Orchestrator sequences ingest → field extraction → skill extraction →
// finalize. Stage calls for different candidates run fully in parallel;
// calls for the same candidate are serialized so a stale retry cannot
// clobber a concurrently-succeeding one.
type Orchestrator struct {
	store      storage.Store
	fields     extract.FieldExtractor
	skills     extract.SkillExtractor
	uploadsDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(store storage.Store, fields extract.FieldExtractor, skills extract.SkillExtractor, uploadsDir string) *Orchestrator {
	return &Orchestrator{
		store:      store,
		fields:     fields,
		skills:     skills,
		uploadsDir: uploadsDir,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-candidate mutex, created lazily. One exclusion
// token per candidate id, never a global lock across candidates.
func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// Ingest validates and stores the uploaded document and creates a new
// pending profile. Returns the assigned candidate id.
func (o *Orchestrator) Ingest(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}
	if !document.Supported(filename) {
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidDocument, filepath.Ext(filename))
	}

	id := uuid.NewString()

	path := filepath.Join(o.uploadsDir, id+strings.ToLower(filepath.Ext(filename)))
	if err := os.MkdirAll(o.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}

	profile := &storage.CandidateProfile{
		ID:           id,
		Filename:     filename,
		DocumentPath: path,
		Status:       storage.StatusPending,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := o.store.Create(ctx, profile); err != nil {
		return "", err
	}
	return id, nil
}

// ExtractFields runs the field extractor adapter against the stored
// document and commits the result, advancing the status to at least
// fields_extracted. Re-running on a later-stage profile overwrites the
// fields without regressing the status, which makes retries after a
// transient adapter failure safe.
func (o *Orchestrator) ExtractFields(ctx context.Context, id string) (*extract.Fields, error) {
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}

	fields, err := o.fields.Extract(ctx, data, p.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	p.Name = fields.Name
	p.Email = fields.Email
	p.Phone = fields.Phone
	p.Location = fields.Location
	p.Experience = fields.Experience
	p.Education = fields.Education
	// Keep category members in the flat list when a later-stage profile
	// has its fields re-extracted.
	p.Skills = extract.EnsureSubset(extract.DedupeSkills(fields.Skills), p.Categories)
	if !p.Status.AtLeast(storage.StatusFieldsExtracted) {
		p.Status = storage.StatusFieldsExtracted
	}

	if err := o.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return fields, nil
}

// ExtractSkills runs the skill extractor adapter; requires the field
// stage to have completed at least once. Same retry-idempotent contract
// as ExtractFields.
func (o *Orchestrator) ExtractSkills(ctx context.Context, id string) ([]string, map[string][]string, error) {
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.Status.AtLeast(storage.StatusFieldsExtracted) {
		return nil, nil, fmt.Errorf("%w: fields not extracted for %s", ErrStageOrder, id)
	}

	data, err := os.ReadFile(p.DocumentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read stored document: %w", err)
	}

	skills, categories, err := o.skills.ExtractSkills(ctx, data, p.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	skills = extract.EnsureSubset(extract.DedupeSkills(skills), categories)
	p.Skills = skills
	p.Categories = categories
	if !p.Status.AtLeast(storage.StatusSkillsExtracted) {
		p.Status = storage.StatusSkillsExtracted
	}

	if err := o.store.Update(ctx, p); err != nil {
		return nil, nil, err
	}
	return skills, categories, nil
}

// Finalize marks the profile ready. Only ready profiles participate in
// index builds. Finalizing an already-ready profile is a no-op.
func (o *Orchestrator) Finalize(ctx context.Context, id string) error {
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == storage.StatusReady {
		return nil
	}
	if !p.Status.AtLeast(storage.StatusSkillsExtracted) {
		return fmt.Errorf("%w: skills not extracted for %s", ErrStageOrder, id)
	}

	p.Status = storage.StatusReady
	return o.store.Update(ctx, p)
}
