package analytics

import (
	"sort"

	"cloud.google.com/go/civil"

	"GovTracker/internal/domain/models"
)

// AsOf returns the most recent observation at or before d.
// No interpolation: a date between two observations resolves to the earlier one.
func AsOf(s models.Series, d civil.Date) (models.Observation, bool) {
	obs := s.Observations
	// first index strictly after d
	i := sort.Search(len(obs), func(i int) bool {
		return obs[i].Date.After(d)
	})
	if i == 0 {
		return models.Observation{}, false
	}
	return obs[i-1], true
}

// Variation returns asOf(end) − asOf(start); ok is false if either side has no observation.
func Variation(s models.Series, start, end civil.Date) (float64, bool) {
	a, ok := AsOf(s, start)
	if !ok {
		return 0, false
	}
	b, ok := AsOf(s, end)
	if !ok {
		return 0, false
	}
	return b.Value - a.Value, true
}

// Latest returns the last observation, if any.
func Latest(s models.Series) (models.Observation, bool) {
	if s.Empty() {
		return models.Observation{}, false
	}
	return s.Last(), true
}
