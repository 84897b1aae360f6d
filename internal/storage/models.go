package storage

import "time"

// Status tracks how far a profile has moved through the extraction
// pipeline. Transitions are monotonic: a profile is never "un-extracted".
type Status string

const (
	StatusPending         Status = "pending"
	StatusFieldsExtracted Status = "fields_extracted"
	StatusSkillsExtracted Status = "skills_extracted"
	StatusReady           Status = "ready"
)

var statusRank = map[Status]int{
	StatusPending:         0,
	StatusFieldsExtracted: 1,
	StatusSkillsExtracted: 2,
	StatusReady:           3,
}

// Rank returns the position of the status in the pipeline order, -1 for
// an unknown status.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// AtLeast reports whether s is at or past the given stage.
func (s Status) AtLeast(other Status) bool {
	return s.Rank() >= other.Rank()
}

// CandidateProfile is the canonical record for one ingested resume.
// The id is assigned at first ingestion and stable for the profile's
// lifetime. Skills carry set semantics (no duplicates, order preserved);
// skills listed under any category are a subset of the flat list.
type CandidateProfile struct {
	ID           string              `json:"id"`
	Name         string              `json:"name,omitempty"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Location     string              `json:"location,omitempty"`
	Experience   string              `json:"experience,omitempty"`
	Education    string              `json:"education,omitempty"`
	Skills       []string            `json:"skills,omitempty"`
	Categories   map[string][]string `json:"categories,omitempty"`
	Filename     string              `json:"filename"`
	DocumentPath string              `json:"-"`
	Status       Status              `json:"status"`
	UpdatedAt    time.Time           `json:"lastUpdated"`
}

// Clone returns a deep copy, so snapshot reads stay isolated from later
// mutation of the stored profile.
func (p *CandidateProfile) Clone() *CandidateProfile {
	cp := *p
	if p.Skills != nil {
		cp.Skills = append([]string(nil), p.Skills...)
	}
	if p.Categories != nil {
		cp.Categories = make(map[string][]string, len(p.Categories))
		for k, v := range p.Categories {
			cp.Categories[k] = append([]string(nil), v...)
		}
	}
	return &cp
}
