package analytics

import (
	"math"
	"testing"

	"cloud.google.com/go/civil"

	"GovTracker/internal/domain/models"
)

func day(d int) civil.Date {
	return civil.Date{Year: 2024, Month: 1, Day: d}
}

func series(name string, days []int, values []float64) models.Series {
	s := models.Series{Name: name}
	for i, d := range days {
		s.Observations = append(s.Observations, models.Observation{Date: day(d), Value: values[i]})
	}
	return s
}

func TestSpreadIntersectsDates(t *testing.T) {
	a := series("A", []int{1, 2, 3, 5, 8}, []float64{4.0, 4.1, 4.2, 4.3, 4.4})
	b := series("B", []int{2, 3, 4, 5, 9}, []float64{2.0, 2.5, 9.9, 2.2, 1.0})

	got := Spread("A-B", a, b)

	wantDays := []int{2, 3, 5}
	wantVals := []float64{4.1 - 2.0, 4.2 - 2.5, 4.3 - 2.2}
	if got.Len() != len(wantDays) {
		t.Fatalf("expected %d rows, got %d", len(wantDays), got.Len())
	}
	for i, o := range got.Observations {
		if o.Date != day(wantDays[i]) {
			t.Fatalf("row %d: date %v want %v", i, o.Date, day(wantDays[i]))
		}
		if math.Abs(o.Value-wantVals[i]) > 1e-12 {
			t.Fatalf("row %d: value %v want %v", i, o.Value, wantVals[i])
		}
	}
	if got.Name != "A-B" {
		t.Fatalf("unexpected name %s", got.Name)
	}
}

func TestSpreadDisjointIsEmpty(t *testing.T) {
	a := series("A", []int{1, 2}, []float64{1, 2})
	b := series("B", []int{3, 4}, []float64{1, 2})
	if got := Spread("x", a, b); !got.Empty() {
		t.Fatalf("expected empty spread, got %d rows", got.Len())
	}
	if got := Spread("x", a, models.Series{}); !got.Empty() {
		t.Fatalf("expected empty spread with empty input")
	}
}

func TestButterflyIdentity(t *testing.T) {
	short := series("2Y", []int{1, 2, 3, 4, 6}, []float64{3.0, 3.1, 3.2, 3.3, 3.5})
	mid := series("5Y", []int{1, 3, 4, 5, 6}, []float64{3.4, 3.6, 3.7, 3.8, 3.9})
	long := series("10Y", []int{1, 2, 3, 6}, []float64{3.9, 4.0, 4.1, 4.4})

	fly := Butterfly("fly", short, mid, long)

	wantDays := []int{1, 3, 6}
	if fly.Len() != len(wantDays) {
		t.Fatalf("expected %d rows, got %d", len(wantDays), fly.Len())
	}
	for i, o := range fly.Observations {
		s, _ := AsOf(short, o.Date)
		m, _ := AsOf(mid, o.Date)
		l, _ := AsOf(long, o.Date)
		if o.Date != day(wantDays[i]) {
			t.Fatalf("row %d: unexpected date %v", i, o.Date)
		}
		if want := 2*m.Value - s.Value - l.Value; math.Abs(o.Value-want) > 1e-12 {
			t.Fatalf("row %d: fly %v want %v", i, o.Value, want)
		}
	}
}

func TestSummarizeMatchesReference(t *testing.T) {
	vals := []float64{1.2, 1.5, 1.1, 1.9, 2.4}

	s := Summarize(vals)

	n := float64(len(vals))
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= n
	ss := 0.0
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / (n - 1))
	z := (vals[len(vals)-1] - mean) / std

	if s.Status != models.StatsOK || s.Count != 5 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if *s.Last != 2.4 {
		t.Fatalf("unexpected last %v", *s.Last)
	}
	if math.Abs(*s.Mean-mean) > 1e-12 || math.Abs(*s.Std-std) > 1e-12 || math.Abs(*s.ZScore-z) > 1e-9 {
		t.Fatalf("summary %v/%v/%v want %v/%v/%v", *s.Mean, *s.Std, *s.ZScore, mean, std, z)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Status != models.StatsEmpty || s.Last != nil || s.Mean != nil || s.Std != nil || s.ZScore != nil {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeSinglePoint(t *testing.T) {
	s := Summarize([]float64{3.3})
	if s.Status != models.StatsIndeterminate {
		t.Fatalf("unexpected status %s", s.Status)
	}
	if s.Last == nil || *s.Last != 3.3 || s.Mean == nil || *s.Mean != 3.3 {
		t.Fatalf("expected last and mean, got %+v", s)
	}
	if s.Std != nil || s.ZScore != nil {
		t.Fatalf("expected no std or z, got %+v", s)
	}
}

func TestSummarizeConstant(t *testing.T) {
	s := Summarize([]float64{0.1, 0.1, 0.1, 0.1})
	if s.Status != models.StatsIndeterminate || s.ZScore != nil {
		t.Fatalf("expected indeterminate z, got %+v", s)
	}
}

func TestAsOfForwardFills(t *testing.T) {
	s := series("US_10Y", []int{2, 5, 9}, []float64{4.0, 4.5, 5.0})

	cases := []struct {
		d    int
		want float64
		ok   bool
	}{
		{1, 0, false},
		{2, 4.0, true},
		{3, 4.0, true},
		{5, 4.5, true},
		{8, 4.5, true},
		{31, 5.0, true},
	}
	for _, c := range cases {
		o, ok := AsOf(s, day(c.d))
		if ok != c.ok || (ok && o.Value != c.want) {
			t.Fatalf("AsOf(day %d) = %v,%v want %v,%v", c.d, o.Value, ok, c.want, c.ok)
		}
	}
}

func TestVariation(t *testing.T) {
	s := series("US_10Y", []int{2, 5, 9}, []float64{4.0, 4.5, 5.0})

	v, ok := Variation(s, day(3), day(10))
	if !ok || math.Abs(v-1.0) > 1e-12 {
		t.Fatalf("unexpected variation %v,%v", v, ok)
	}
	if _, ok := Variation(s, day(1), day(10)); ok {
		t.Fatalf("expected missing start observation")
	}
	if _, ok := Latest(models.Series{}); ok {
		t.Fatalf("expected no latest on empty series")
	}
}
