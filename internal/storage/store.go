package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a candidate id is unknown.
	ErrNotFound = errors.New("candidate not found")

	// ErrStatusRegression is returned when an update would move a
	// profile backwards through the extraction stages.
	ErrStatusRegression = errors.New("profile status cannot regress")

	// ErrDuplicateID is returned when creating a profile with an id
	// that already exists.
	ErrDuplicateID = errors.New("candidate id already exists")
)

// Store is the profile store: the source of truth for candidate data.
// Implementations must deep-copy on read so callers never share memory
// with stored records.
type Store interface {
	Create(ctx context.Context, p *CandidateProfile) error
	Get(ctx context.Context, id string) (*CandidateProfile, error)

	// Update replaces the stored profile. The status may stay or
	// advance but never regress.
	Update(ctx context.Context, p *CandidateProfile) error

	// Latest returns the id of the most recently ingested candidate.
	// The upload/extract flow references "the latest resume" implicitly.
	Latest(ctx context.Context) (string, error)

	List(ctx context.Context) ([]*CandidateProfile, error)

	// ListReady returns a point-in-time copy of every profile in
	// status ready, for index builds.
	ListReady(ctx context.Context) ([]*CandidateProfile, error)
}
