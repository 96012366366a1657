package collision

import "errors"

var (
	ErrUnknownLayer = errors.New("object layer not reachable by any bullet layer")
	ErrRegistered   = errors.New("collider already registered")
)
