package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrRateTypeNotFound indicates that a rate type with the given ID does not exist.
	ErrRateTypeNotFound = errors.New("rate type not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrUnknownMethod indicates that a rate type references an autoload method
	// without a registered provider (including the placeholder empty_method).
	ErrUnknownMethod = errors.New("unknown autoload method")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidRate indicates a fetched rate or date could not be converted for storage.
	ErrInvalidRate = errors.New("invalid rate")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Rate type operation errors
	ErrFailedToRetrieveRateTypes = errors.New("failed to retrieve rate types")
	ErrFailedToRetrieveRateType  = errors.New("failed to retrieve rate type")
	ErrFailedToCreateRateType    = errors.New("failed to create rate type")
	ErrFailedToUpdateRateType    = errors.New("failed to update rate type")
	ErrFailedToDeleteRateType    = errors.New("failed to delete rate type")
	ErrFailedToRunRateType       = errors.New("failed to run rate type")

	// Currency rate operation errors
	ErrFailedToRetrieveRates = errors.New("failed to retrieve currency rates")
)
