package validation

import (
	"github.com/ndewijer/Currency-Rate-Loader/internal/api/request"
)

// ValidateCreateRateType validates a rate type creation request.
//
// Required fields:
//   - name: at most 20 characters
//   - autoloadMethod: one of model.AutoloadMethods
//
// Optional fields:
//   - baseCurrency: letters and digits, at most 10 characters
//   - intervalValue: minutes between runs, at least 1
//   - tickers: at most 4000 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateRateType(req request.CreateRateTypeRequest) error {
	return Struct(req)
}

// ValidateUpdateRateType validates a rate type update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateRateType(req request.UpdateRateTypeRequest) error {
	return Struct(req)
}

// ValidateRateFilter validates the query filters of the stored rates listing.
func ValidateRateFilter(req request.RateFilterRequest) error {
	return Struct(req)
}
