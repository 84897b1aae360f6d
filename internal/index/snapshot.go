package index

import "time"

// Summary is the denormalized candidate view carried inside a snapshot,
// so search results render without touching the profile store.
type Summary struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Location   string
	Experience string
	Skills     []string
	UpdatedAt  time.Time
}

// Snapshot is an immutable point-in-time search index. Once published it
// is never mutated, only superseded by a snapshot with a greater generation.
// Generation 0 means no index has been built yet.
type Snapshot struct {
	Generation uint64
	BuiltAt    time.Time

	// Skills maps a normalized skill token to the sorted ids of
	// candidates holding that skill.
	Skills map[string][]string

	// Keywords maps normalized name/location tokens to candidate ids.
	// These are the coarse fallback matches, scored lower than a skill hit.
	Keywords map[string][]string

	Summaries map[string]Summary
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Skills:    map[string][]string{},
		Keywords:  map[string][]string{},
		Summaries: map[string]Summary{},
	}
}
