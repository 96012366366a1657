package simulation

import "errors"

var (
	ErrClosed = errors.New("simulation closed")
	ErrOrphan = errors.New("entity not owned by any emitter")
)
