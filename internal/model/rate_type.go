package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Autoload methods a rate type can be configured with.
const (
	MethodEmpty    = "empty_method"
	MethodCBRF     = "cbrf_method"
	MethodECB      = "ecb_method"
	MethodBinance  = "binance_method"
	MethodGarantex = "garantex_method"
	MethodXE       = "xe_method"
)

// AutoloadMethods lists every selectable method in display order.
var AutoloadMethods = []string{
	MethodEmpty,
	MethodCBRF,
	MethodECB,
	MethodBinance,
	MethodGarantex,
	MethodXE,
}

// RateType is a configured combination of provider, base currency, tickers
// and polling interval. It is the unit of scheduling.
type RateType struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	AutoloadMethod string     `json:"autoloadMethod"`
	BaseCurrency   string     `json:"baseCurrency"`
	Active         bool       `json:"active"`
	IntervalValue  int        `json:"intervalValue"` // minutes
	Tickers        string     `json:"tickers"`
	LastRun        *time.Time `json:"lastRun"`
	LastResult     *RunResult `json:"lastResult"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NextRun returns when the rate type is due again. A rate type that never
// ran is due immediately and NextRun returns the zero time.
func (rt RateType) NextRun() time.Time {
	if rt.LastRun == nil {
		return time.Time{}
	}
	return rt.LastRun.Add(time.Duration(rt.IntervalValue) * time.Minute)
}

// IsDue reports whether an active rate type should be fetched at now.
func (rt RateType) IsDue(now time.Time) bool {
	if !rt.Active {
		return false
	}
	return !rt.NextRun().After(now)
}

// RunFailure is the summary of a cycle aborted by an upstream failure.
type RunFailure struct {
	StatusCode int
	Reason     string
}

// RunResult is the summary written back to a rate type after a cycle.
// It holds either the annotated records or a single failure entry.
type RunResult struct {
	Records []RateRecord
	Failure *RunFailure
}

// MarshalJSON encodes the summary as a list: the records themselves, or
// one {"<status>": "<reason>"} object for a failed cycle.
func (r RunResult) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal([]map[string]string{
			{strconv.Itoa(r.Failure.StatusCode): r.Failure.Reason},
		})
	}
	if r.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Records)
}

// UnmarshalJSON reverses MarshalJSON.
func (r *RunResult) UnmarshalJSON(data []byte) error {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode run result: %w", err)
	}

	if len(entries) == 1 && len(entries[0]) == 1 {
		for key, raw := range entries[0] {
			code, err := strconv.Atoi(key)
			if err != nil {
				break
			}
			var reason string
			if err := json.Unmarshal(raw, &reason); err != nil {
				return fmt.Errorf("failed to decode run failure reason: %w", err)
			}
			*r = RunResult{Failure: &RunFailure{StatusCode: code, Reason: reason}}
			return nil
		}
	}

	var records []RateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode run records: %w", err)
	}
	*r = RunResult{Records: records}
	return nil
}
