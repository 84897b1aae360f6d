// Package extract defines the extractor adapter boundary: document bytes
// in, structured candidate data out. Implementations are pluggable at
// configuration time: a deterministic rule-based extractor by default,
// an LLM-backed one when a provider is configured.
package extract

import "context"

// Fields holds the structured values pulled out of a resume document.
// Everything is optional; whatever the extractor found.
type Fields struct {
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Location   string   `json:"location,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

// FieldExtractor turns raw document bytes into structured fields.
type FieldExtractor interface {
	Extract(ctx context.Context, documentBytes []byte, filename string) (*Fields, error)
}

// SkillExtractor turns raw document bytes into a flat skill list plus an
// optional category grouping. Skills under any category are guaranteed to
// appear in the flat list.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, documentBytes []byte, filename string) ([]string, map[string][]string, error)
}

// DedupeSkills removes duplicates while preserving first-seen order.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// EnsureSubset folds any category member missing from the flat list back
// into it, keeping the categories-⊆-skills invariant.
func EnsureSubset(skills []string, categories map[string][]string) []string {
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		seen[s] = true
	}
	for _, members := range categories {
		for _, s := range members {
			if s != "" && !seen[s] {
				seen[s] = true
				skills = append(skills, s)
			}
		}
	}
	return skills
}
