package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-search/internal/extract"
	"resume-search/internal/index"
	"resume-search/internal/search"
	"resume-search/internal/storage"
)

type stubFieldExtractor struct {
	fields extract.Fields
	err    error
	calls  int32
}

func (s *stubFieldExtractor) Extract(context.Context, []byte, string) (*extract.Fields, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	f := s.fields
	return &f, nil
}

type stubSkillExtractor struct {
	skills     []string
	categories map[string][]string
	err        error
}

func (s *stubSkillExtractor) ExtractSkills(context.Context, []byte, string) ([]string, map[string][]string, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return append([]string(nil), s.skills...), s.categories, nil
}

func newTestOrchestrator(t *testing.T, store storage.Store, fields extract.FieldExtractor, skills extract.SkillExtractor) *Orchestrator {
	t.Helper()
	return NewOrchestrator(store, fields, skills, t.TempDir())
}

func TestIngestRejectsEmptyPayload(t *testing.T) {
	o := newTestOrchestrator(t, storage.NewMemoryStore(), &stubFieldExtractor{}, &stubSkillExtractor{})

	_, err := o.Ingest(context.Background(), nil, "resume.pdf")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestIngestRejectsUnsupportedExtension(t *testing.T) {
	o := newTestOrchestrator(t, storage.NewMemoryStore(), &stubFieldExtractor{}, &stubSkillExtractor{})

	for _, name := range []string{"resume.txt", "resume.png", "resume"} {
		_, err := o.Ingest(context.Background(), []byte("data"), name)
		assert.ErrorIs(t, err, ErrInvalidDocument, "filename %q", name)
	}
}

func TestIngestCreatesPendingProfile(t *testing.T) {
	store := storage.NewMemoryStore()
	o := newTestOrchestrator(t, store, &stubFieldExtractor{}, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("%PDF-1.4 fake"), "jane.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, p.Status)
	assert.Equal(t, "jane.pdf", p.Filename)
}

func TestExtractFieldsUnknownCandidate(t *testing.T) {
	o := newTestOrchestrator(t, storage.NewMemoryStore(), &stubFieldExtractor{}, &stubSkillExtractor{})

	_, err := o.ExtractFields(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExtractFieldsAdvancesStatus(t *testing.T) {
	store := storage.NewMemoryStore()
	fieldsStub := &stubFieldExtractor{fields: extract.Fields{Name: "Jane Doe", Email: "jane@x.com"}}
	o := newTestOrchestrator(t, store, fieldsStub, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	fields, err := o.ExtractFields(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", fields.Name)

	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusFieldsExtracted, p.Status)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "jane@x.com", p.Email)
}

func TestExtractFieldsIdempotentRetry(t *testing.T) {
	store := storage.NewMemoryStore()
	fieldsStub := &stubFieldExtractor{fields: extract.Fields{Name: "Jane Doe", Email: "jane@x.com"}}
	o := newTestOrchestrator(t, store, fieldsStub, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	_, err = o.ExtractFields(context.Background(), id)
	require.NoError(t, err)
	first, err := store.Get(context.Background(), id)
	require.NoError(t, err)

	// Second run with the same adapter output: identical stored fields,
	// status unchanged.
	_, err = o.ExtractFields(context.Background(), id)
	require.NoError(t, err)
	second, err := store.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.Skills, second.Skills)
	assert.Equal(t, first.Status, second.Status)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fieldsStub.calls))
}

func TestExtractFieldsFailureLeavesProfileUntouched(t *testing.T) {
	store := storage.NewMemoryStore()
	fieldsStub := &stubFieldExtractor{err: errors.New("model unavailable")}
	o := newTestOrchestrator(t, store, fieldsStub, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	_, err = o.ExtractFields(context.Background(), id)
	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.Contains(t, err.Error(), "model unavailable")

	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, p.Status)
	assert.Empty(t, p.Name)
}

func TestExtractSkillsRequiresFieldStage(t *testing.T) {
	store := storage.NewMemoryStore()
	o := newTestOrchestrator(t, store, &stubFieldExtractor{}, &stubSkillExtractor{skills: []string{"Go"}})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	_, _, err = o.ExtractSkills(context.Background(), id)
	assert.ErrorIs(t, err, ErrStageOrder)
}

func TestExtractSkillsEnforcesCategorySubset(t *testing.T) {
	store := storage.NewMemoryStore()
	skillsStub := &stubSkillExtractor{
		skills:     []string{"Go"},
		categories: map[string][]string{"Data": {"SQL"}},
	}
	o := newTestOrchestrator(t, store, &stubFieldExtractor{}, skillsStub)

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)
	_, err = o.ExtractFields(context.Background(), id)
	require.NoError(t, err)

	skills, _, err := o.ExtractSkills(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, skills)

	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, p.Skills)
	assert.Equal(t, storage.StatusSkillsExtracted, p.Status)
}

func TestFinalizeRequiresSkillStage(t *testing.T) {
	store := storage.NewMemoryStore()
	o := newTestOrchestrator(t, store, &stubFieldExtractor{}, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	err = o.Finalize(context.Background(), id)
	assert.ErrorIs(t, err, ErrStageOrder)
}

func TestStatusNeverRegresses(t *testing.T) {
	store := storage.NewMemoryStore()
	fieldsStub := &stubFieldExtractor{fields: extract.Fields{Name: "Jane Doe"}}
	skillsStub := &stubSkillExtractor{skills: []string{"Go"}}
	o := newTestOrchestrator(t, store, fieldsStub, skillsStub)
	ctx := context.Background()

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)
	_, err = o.ExtractFields(ctx, id)
	require.NoError(t, err)
	_, _, err = o.ExtractSkills(ctx, id)
	require.NoError(t, err)
	require.NoError(t, o.Finalize(ctx, id))

	// Re-running earlier stages overwrites data but keeps status ready.
	_, err = o.ExtractFields(ctx, id)
	require.NoError(t, err)
	p, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusReady, p.Status)

	// Finalize again is a no-op.
	require.NoError(t, o.Finalize(ctx, id))
}

// serializingExtractor fails the test when two extractions for the same
// candidate overlap.
type serializingExtractor struct {
	inflight int32
	overlaps int32
}

func (s *serializingExtractor) Extract(context.Context, []byte, string) (*extract.Fields, error) {
	if atomic.AddInt32(&s.inflight, 1) > 1 {
		atomic.AddInt32(&s.overlaps, 1)
	}
	time.Sleep(2 * time.Millisecond)
	atomic.AddInt32(&s.inflight, -1)
	return &extract.Fields{Name: "Jane Doe"}, nil
}

func TestPerCandidateExtractionSerialized(t *testing.T) {
	store := storage.NewMemoryStore()
	ext := &serializingExtractor{}
	o := newTestOrchestrator(t, store, ext, &stubSkillExtractor{})

	id, err := o.Ingest(context.Background(), []byte("doc"), "jane.pdf")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.ExtractFields(context.Background(), id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&ext.overlaps), "extractions for one candidate overlapped")
}

func TestPipelineEndToEnd(t *testing.T) {
	store := storage.NewMemoryStore()
	fieldsStub := &stubFieldExtractor{fields: extract.Fields{Name: "Jane Doe", Email: "jane@x.com"}}
	skillsStub := &stubSkillExtractor{skills: []string{"Go", "SQL"}}
	o := newTestOrchestrator(t, store, fieldsStub, skillsStub)
	ctx := context.Background()

	id, err := o.Ingest(context.Background(), []byte("%PDF-1.4 fake resume"), "jane.pdf")
	require.NoError(t, err)

	fields, err := o.ExtractFields(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "jane@x.com", fields.Email)

	skills, _, err := o.ExtractSkills(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, skills)

	require.NoError(t, o.Finalize(ctx, id))

	builder := index.NewBuilder(store)
	gen, report, err := builder.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, 1, report.Indexed)

	engine := search.NewEngine(builder, 0, 0, 0)
	matches, err := engine.Search("go")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)
	assert.Equal(t, "Go", matches[0].MatchedSkill)
	assert.Equal(t, float64(search.DefaultSkillWeight), matches[0].Score)
}
