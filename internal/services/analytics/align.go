package analytics

import (
	"cloud.google.com/go/civil"

	"GovTracker/internal/domain/models"
)

// Spread returns a − b on the dates both series share.
func Spread(name string, a, b models.Series) models.Series {
	dates, cols := InnerJoin(a, b)
	out := make([]models.Observation, len(dates))
	for i, d := range dates {
		out[i] = models.Observation{Date: d, Value: cols[0][i] - cols[1][i]}
	}
	return models.Series{Name: name, Observations: out}
}

// Butterfly returns 2×mid − short − long on the dates all three series share.
func Butterfly(name string, short, mid, long models.Series) models.Series {
	dates, cols := InnerJoin(short, mid, long)
	out := make([]models.Observation, len(dates))
	for i, d := range dates {
		out[i] = models.Observation{Date: d, Value: 2*cols[1][i] - cols[0][i] - cols[2][i]}
	}
	return models.Series{Name: name, Observations: out}
}

// InnerJoin aligns ascending, date-unique series on their common dates.
// cols[k][i] is the value of series k on dates[i].
func InnerJoin(series ...models.Series) (dates []civil.Date, cols [][]float64) {
	cols = make([][]float64, len(series))
	if len(series) == 0 {
		return nil, cols
	}
	for _, s := range series {
		if s.Empty() {
			return nil, cols
		}
	}

	pos := make([]int, len(series))
	for _, o := range series[0].Observations {
		matched := true
		for k := 1; k < len(series); k++ {
			obs := series[k].Observations
			for pos[k] < len(obs) && obs[pos[k]].Date.Before(o.Date) {
				pos[k]++
			}
			if pos[k] == len(obs) {
				return dates, cols
			}
			if obs[pos[k]].Date != o.Date {
				matched = false
			}
		}
		if !matched {
			continue
		}
		dates = append(dates, o.Date)
		cols[0] = append(cols[0], o.Value)
		for k := 1; k < len(series); k++ {
			cols[k] = append(cols[k], series[k].Observations[pos[k]].Value)
		}
	}
	return dates, cols
}
