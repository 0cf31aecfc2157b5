package registry

import "errors"

var (
	// ErrDuplicateLocation is returned when two records derive the same slug.
	ErrDuplicateLocation = errors.New("duplicate location")

	// ErrInvalidLocation is returned when a record is missing required fields
	// or carries unparsable coordinates.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrLocationNotFound is returned by lookups for an unknown slug or zip code.
	ErrLocationNotFound = errors.New("location not found")
)
