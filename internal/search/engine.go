package search

import (
	"errors"
	"sort"
	"time"

	"resume-search/internal/index"
)

var (
	// ErrIndexNotBuilt is returned while the current snapshot is still
	// generation 0.
	ErrIndexNotBuilt = errors.New("search index not built yet")

	// ErrEmptyQuery is returned when the query normalizes to zero tokens.
	ErrEmptyQuery = errors.New("empty search query")
)

const (
	DefaultLimit         = 50
	DefaultSkillWeight   = 100
	DefaultKeywordWeight = 10
)

// Match is one ranked search result. MatchedSkill carries a single
// representative skill that matched, for highlighting; it is empty when
// only a name/location keyword matched.
type Match struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Experience   string    `json:"experience,omitempty"`
	MatchedSkill string    `json:"matched_skill,omitempty"`
	Score        float64   `json:"score,omitempty"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// SnapshotSource yields the current published index snapshot.
type SnapshotSource interface {
	Current() *index.Snapshot
}

// Engine answers ranked queries against the current snapshot. Scoring is
// a plain additive model: every matched token contributes its weight and
// the candidate's score is the sum. A skill hit outweighs a keyword
// fallback hit against name or location.
type Engine struct {
	snapshots     SnapshotSource
	limit         int
	skillWeight   float64
	keywordWeight float64
}

func NewEngine(snapshots SnapshotSource, limit int, skillWeight, keywordWeight float64) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if skillWeight <= 0 {
		skillWeight = DefaultSkillWeight
	}
	if keywordWeight <= 0 {
		keywordWeight = DefaultKeywordWeight
	}
	return &Engine{
		snapshots:     snapshots,
		limit:         limit,
		skillWeight:   skillWeight,
		keywordWeight: keywordWeight,
	}
}

// Search runs the query against the current snapshot and returns matches
// ordered by descending score, ties broken by ascending candidate id.
// Arbitrarily many searches may run concurrently; the snapshot is never
// mutated.
func (e *Engine) Search(query string) ([]Match, error) {
	snap := e.snapshots.Current()
	if snap.Generation == 0 {
		return nil, ErrIndexNotBuilt
	}

	tokens := index.QueryTokens(query)
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}

	scores := make(map[string]float64)
	matchedSkill := make(map[string]string)

	for _, token := range tokens {
		skillHits := make(map[string]bool)
		for _, id := range snap.Skills[token] {
			skillHits[id] = true
			scores[id] += e.skillWeight
			if matchedSkill[id] == "" {
				matchedSkill[id] = originalSkill(snap.Summaries[id].Skills, token)
			}
		}
		for _, id := range snap.Keywords[token] {
			// A token matching both a skill and a keyword field counts
			// once, at the skill weight.
			if skillHits[id] {
				continue
			}
			scores[id] += e.keywordWeight
		}
	}

	matches := make([]Match, 0, len(scores))
	for id, score := range scores {
		s := snap.Summaries[id]
		matches = append(matches, Match{
			ID:           s.ID,
			Name:         s.Name,
			Email:        s.Email,
			Phone:        s.Phone,
			Location:     s.Location,
			Experience:   s.Experience,
			MatchedSkill: matchedSkill[id],
			Score:        score,
			LastUpdated:  s.UpdatedAt,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > e.limit {
		matches = matches[:e.limit]
	}
	return matches, nil
}

// originalSkill recovers the candidate's original-case skill behind a
// normalized token, so "go" highlights as "Go".
func originalSkill(skills []string, token string) string {
	for _, s := range skills {
		if index.NormalizeToken(s) == token {
			return s
		}
	}
	return ""
}
