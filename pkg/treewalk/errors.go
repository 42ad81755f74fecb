package treewalk

import "go.llib.dev/frameless/pkg/errorkit"

const (
	// ErrMissingLookup is yielded by an iterator which has no First or Next lookup function.
	ErrMissingLookup errorkit.Error = "treewalk: missing first or next lookup"
	// ErrUnknownStatus is returned when a status name can't be parsed.
	ErrUnknownStatus errorkit.Error = "treewalk: unknown status"
)
