package registry

import "errors"

var (
	// ErrDuplicateName is returned by Register when the name is already
	// taken and no overwrite was requested.
	ErrDuplicateName = errors.New("agent name already registered")

	// ErrUnknownAgent is returned by Resolve for names that were never
	// registered.
	ErrUnknownAgent = errors.New("unknown agent")
)
