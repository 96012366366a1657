package bullet

import "errors"

var (
	// ErrCorruptTree reports broken parent/child linkage. It always means a
	// caller mutated structure outside the arena API.
	ErrCorruptTree = errors.New("corrupt bullet tree")
)
