package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"resume-search/internal/storage"
)

var (
	// ErrRebuildInProgress is returned when a rebuild is requested while
	// another one is running. Concurrent rebuild requests are rejected,
	// not queued.
	ErrRebuildInProgress = errors.New("index rebuild already in progress")

	// ErrNoIndexableProfiles is returned when not a single ready profile
	// could be indexed. The prior snapshot stays current.
	ErrNoIndexableProfiles = errors.New("no indexable profiles")
)

// BuildReport summarizes one rebuild: how many profiles made it into the
// snapshot and which were skipped, with reasons. A single bad record never
// aborts the whole build.
type BuildReport struct {
	Indexed int      `json:"indexed"`
	Skipped int      `json:"skipped"`
	Reasons []string `json:"reasons,omitempty"`
}

// Builder produces immutable snapshots from the profile store and owns
// the process-wide "current snapshot" reference. Readers load it through
// an atomic pointer, so search never blocks on a rebuild.
type Builder struct {
	store   storage.Store
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewBuilder(store storage.Store) *Builder {
	b := &Builder{store: store}
	b.current.Store(emptySnapshot())
	return b
}

// Current returns the latest published snapshot. At startup this is the
// empty generation-0 snapshot.
func (b *Builder) Current() *Snapshot {
	return b.current.Load()
}

// Rebuild enumerates all ready profiles, builds a fresh snapshot against
// that point-in-time read and publishes it atomically. Profiles that
// change mid-build are reflected in the next build, not this one.
func (b *Builder) Rebuild(ctx context.Context) (uint64, *BuildReport, error) {
	if !b.mu.TryLock() {
		return 0, nil, ErrRebuildInProgress
	}
	defer b.mu.Unlock()

	start := time.Now()

	profiles, err := b.store.ListReady(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list ready profiles: %w", err)
	}

	snap := emptySnapshot()
	report := &BuildReport{}

	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return 0, nil, fmt.Errorf("rebuild cancelled: %w", err)
		}
		if reason := b.indexProfile(snap, p); reason != "" {
			report.Skipped++
			report.Reasons = append(report.Reasons, fmt.Sprintf("%s: %s", p.ID, reason))
			continue
		}
		report.Indexed++
	}

	if report.Indexed == 0 {
		return 0, report, ErrNoIndexableProfiles
	}

	for _, postings := range snap.Skills {
		sort.Strings(postings)
	}
	for _, postings := range snap.Keywords {
		sort.Strings(postings)
	}

	// Publish. Cancellation is best-effort: past this point the build
	// completes and becomes visible as a whole.
	if err := ctx.Err(); err != nil {
		return 0, nil, fmt.Errorf("rebuild cancelled: %w", err)
	}
	snap.Generation = b.current.Load().Generation + 1
	snap.BuiltAt = time.Now().UTC()
	b.current.Store(snap)

	log.Printf("[IndexBuilder] generation %d published: %d indexed, %d skipped (%v)",
		snap.Generation, report.Indexed, report.Skipped, time.Since(start))

	return snap.Generation, report, nil
}

// indexProfile registers one profile in the snapshot being built and
// returns a skip reason when the profile cannot be indexed.
func (b *Builder) indexProfile(snap *Snapshot, p *storage.CandidateProfile) string {
	if p.ID == "" {
		return "missing id"
	}
	if _, ok := snap.Summaries[p.ID]; ok {
		return "duplicate id"
	}

	skillTokens := make(map[string]bool)
	for _, skill := range p.Skills {
		if t := NormalizeToken(skill); t != "" {
			skillTokens[t] = true
		}
	}

	keywordTokens := make(map[string]bool)
	for _, field := range []string{p.Name, p.Location} {
		for _, t := range WordTokens(field) {
			keywordTokens[t] = true
		}
		if t := NormalizeToken(field); t != "" {
			keywordTokens[t] = true
		}
	}

	if len(skillTokens) == 0 && len(keywordTokens) == 0 {
		return "nothing to index"
	}

	for t := range skillTokens {
		snap.Skills[t] = append(snap.Skills[t], p.ID)
	}
	for t := range keywordTokens {
		snap.Keywords[t] = append(snap.Keywords[t], p.ID)
	}

	snap.Summaries[p.ID] = Summary{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Location:   p.Location,
		Experience: p.Experience,
		Skills:     append([]string(nil), p.Skills...),
		UpdatedAt:  p.UpdatedAt,
	}
	return ""
}
