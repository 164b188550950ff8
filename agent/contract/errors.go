package contract

import "errors"

var (
	ErrCapabilityInvoke = errors.New("capability invoke failed")
	ErrSchemaViolation  = errors.New("capability response violates schema")
	ErrBudgetExceeded   = errors.New("delegation step budget exceeded")
	ErrMissingIdentity  = errors.New("no resolvable user or thread identity")
	ErrValidation       = errors.New("validation failed")
)
