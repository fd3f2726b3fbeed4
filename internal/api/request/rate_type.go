package request

// CreateRateTypeRequest is the body of POST /api/rate-type.
type CreateRateTypeRequest struct {
	Name           string `json:"name" validate:"required,max=20"`
	AutoloadMethod string `json:"autoloadMethod" validate:"required,autoload_method"`
	BaseCurrency   string `json:"baseCurrency" validate:"omitempty,alphanum,max=10"`
	Active         *bool  `json:"active,omitempty"`
	IntervalValue  int    `json:"intervalValue" validate:"omitempty,min=1,max=10080"`
	Tickers        string `json:"tickers" validate:"max=4000"`
}

// UpdateRateTypeRequest is the body of PUT /api/rate-type/{uuid}.
// Omitted fields keep their stored value.
type UpdateRateTypeRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitnil,min=1,max=20"`
	AutoloadMethod *string `json:"autoloadMethod,omitempty" validate:"omitempty,autoload_method"`
	BaseCurrency   *string `json:"baseCurrency,omitempty" validate:"omitempty,alphanum,max=10"`
	Active         *bool   `json:"active,omitempty"`
	IntervalValue  *int    `json:"intervalValue,omitempty" validate:"omitempty,min=1,max=10080"`
	Tickers        *string `json:"tickers,omitempty" validate:"omitempty,max=4000"`
}

// RateFilterRequest holds the query parameters of GET /api/rate-type/{uuid}/rate.
type RateFilterRequest struct {
	From  string `validate:"omitempty,alphanum,max=10"`
	To    string `validate:"omitempty,alphanum,max=10"`
	Date  string `validate:"omitempty,datetime=2006-01-02"`
	Limit int    `validate:"omitempty,min=1,max=10000"`
}
