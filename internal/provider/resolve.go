package provider

import (
	"strings"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// RateSet is a symbol-keyed set of records that remembers insertion order.
// Putting an existing key replaces the record in place.
type RateSet struct {
	keys    []string
	records map[string]model.RateRecord
}

// NewRateSet returns an empty RateSet.
func NewRateSet() *RateSet {
	return &RateSet{records: make(map[string]model.RateRecord)}
}

// Put stores rec under key.
func (s *RateSet) Put(key string, rec model.RateRecord) {
	if _, ok := s.records[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.records[key] = rec
}

// Get returns the record stored under key.
func (s *RateSet) Get(key string) (model.RateRecord, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// Has reports whether key is present.
func (s *RateSet) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Len returns the number of records.
func (s *RateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Records returns every record in insertion order.
func (s *RateSet) Records() []model.RateRecord {
	if s == nil {
		return []model.RateRecord{}
	}
	out := make([]model.RateRecord, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.records[key])
	}
	return out
}

// Match is the outcome of resolving one ticker.
type Match struct {
	Ticker  ticker.Ticker
	Records []model.RateRecord
}

// Found reports whether the ticker selected at least one record.
func (m Match) Found() bool {
	return len(m.Records) > 0
}

// Resolve selects the records each ticker of spec refers to.
//
// Exact tickers look up their symbol key. "*XXX" selects every record quoted
// in XXX and "XXX*" every record based on XXX, both in set order. An empty
// spec returns nil; callers treat that as "everything".
func Resolve(set *RateSet, spec ticker.Spec) []Match {
	if spec.IsEmpty() {
		return nil
	}

	matches := make([]Match, 0, len(spec))
	for _, t := range spec {
		m := Match{Ticker: t}

		switch t.Kind {
		case ticker.KindExact:
			if rec, ok := set.Get(t.Symbol); ok {
				m.Records = []model.RateRecord{rec}
			}
		case ticker.KindAnyFrom:
			for _, rec := range set.Records() {
				if rec.CurrencyTo == t.Symbol {
					m.Records = append(m.Records, rec)
				}
			}
		case ticker.KindAnyTo:
			for _, rec := range set.Records() {
				if rec.CurrencyFrom == t.Symbol {
					m.Records = append(m.Records, rec)
				}
			}
		}

		matches = append(matches, m)
	}
	return matches
}

// pair is a tradable market listed by a two-phase source's metadata call.
type pair struct {
	ID    string // market id as the upstream expects it in rate calls
	Base  string // uppercase
	Quote string // uppercase
}

func (p pair) key() string {
	return p.Base + p.Quote
}

// resolvePairs applies the ticker rules to market metadata so that only the
// markets a rate type asks for are priced. Exact tickers match the market id
// case-insensitively and stop at the first hit.
func resolvePairs(pairs []pair, spec ticker.Spec) []pair {
	var selected []pair
	seen := make(map[string]bool)
	add := func(p pair) {
		if seen[p.key()] {
			return
		}
		seen[p.key()] = true
		selected = append(selected, p)
	}

	for _, t := range spec {
		switch t.Kind {
		case ticker.KindAnyFrom:
			for _, p := range pairs {
				if p.Quote == t.Symbol {
					add(p)
				}
			}
		case ticker.KindAnyTo:
			for _, p := range pairs {
				if p.Base == t.Symbol {
					add(p)
				}
			}
		default:
			for _, p := range pairs {
				if strings.EqualFold(p.ID, t.Symbol) {
					add(p)
					break
				}
			}
		}
	}
	return selected
}
