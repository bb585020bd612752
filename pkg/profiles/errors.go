package profiles

import "errors"

var (
	// ErrProfileExists indicates an import would replace an existing profile
	ErrProfileExists = errors.New("profile already exists")

	// ErrProfileNotFound indicates the requested profile is not in the library
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidProfileName indicates a name that is empty or escapes the library directory
	ErrInvalidProfileName = errors.New("invalid profile name")
)
