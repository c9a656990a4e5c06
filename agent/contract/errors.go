package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("owner id is required")
	ErrInvalidMessage  = errors.New("message is required")
	ErrIterationLimit  = errors.New("tool loop exceeded iteration limit")
)
