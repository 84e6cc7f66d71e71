package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity already exists or concurrent update lost
// - ErrExpired: cache entry or grace period past its deadline
// - ErrBudgetExhausted: privacy budget spend would exceed the cap
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExpired         = errors.New("expired")
	ErrBudgetExhausted = errors.New("privacy budget exhausted")
	ErrUnavailable     = errors.New("unavailable")
)
