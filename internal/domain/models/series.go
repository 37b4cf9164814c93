package models

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// SeriesKey identifies one snapshot: an issuer and a maturity bucket.
type SeriesKey struct {
	Issuer   string `json:"issuer"`
	Maturity string `json:"maturity"`
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s_%s", k.Issuer, k.Maturity)
}

// Observation is one dated value.
type Observation struct {
	Date  civil.Date `json:"date"`
	Value float64    `json:"value"`
}

// Series is an ascending, date-unique sequence of observations.
// Name is a display label: the key for raw series, the rule for derived ones.
type Series struct {
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`
}

func (s Series) Len() int { return len(s.Observations) }

func (s Series) Empty() bool { return len(s.Observations) == 0 }

// Values returns the value column.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value
	}
	return out
}

// Dates returns the date column.
func (s Series) Dates() []civil.Date {
	out := make([]civil.Date, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Date
	}
	return out
}

// First and Last assume a non-empty series.
func (s Series) First() Observation { return s.Observations[0] }

func (s Series) Last() Observation { return s.Observations[len(s.Observations)-1] }
