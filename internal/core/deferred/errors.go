package deferred

import "errors"

var (
	ErrOperationExists = errors.New("operation already registered")
	ErrInvalidName     = errors.New("operation name is empty")
)
