package emitter

import "errors"

var (
	ErrUnknownEmitter = errors.New("emitter is not registered")
	ErrArenaFull      = errors.New("no arena slot for master structure")
)
