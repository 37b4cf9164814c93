package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"GovTracker/internal/domain/models"
)

// zeroStd is the relative deviation below which a column counts as constant.
const zeroStd = 1e-12

// Summarize computes the metric cards of a value column.
//
// Standard deviation is the sample (n−1) estimate. A z-score is only reported
// when the deviation is finite and non-zero; otherwise the summary is marked
// indeterminate and ZScore stays nil. An empty column yields an empty summary.
func Summarize(values []float64) models.Summary {
	n := len(values)
	if n == 0 {
		return models.Summary{Status: models.StatsEmpty}
	}

	last := values[n-1]
	sum := models.Summary{
		Count:  n,
		Last:   finite(last),
		Status: models.StatsIndeterminate,
	}
	if n == 1 {
		sum.Mean = finite(last)
		return sum
	}

	mean, std := stat.MeanStdDev(values, nil)
	sum.Mean = finite(mean)
	sum.Std = finite(std)
	if sum.Std == nil || sum.Mean == nil || std <= zeroStd*math.Max(1, math.Abs(mean)) {
		return sum
	}

	sum.ZScore = finite((last - mean) / std)
	if sum.ZScore != nil {
		sum.Status = models.StatsOK
	}
	return sum
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
