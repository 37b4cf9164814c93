package usecase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	"GovTracker/internal/services/analytics"
	applogger "GovTracker/pkg/logger"
	"GovTracker/pkg/util"
)

const (
	dateAxis  = "Date"
	yieldAxis = "Yield (%)"
)

// DashboardUseCase computes the panels the dashboard page shows. Every call
// reads the snapshots it needs; nothing is kept between calls.
type DashboardUseCase struct {
	store    domrepo.SnapshotStore
	universe models.Universe
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewDashboardUseCase(store domrepo.SnapshotStore, universe models.Universe, metrics domrepo.Metrics, l *applogger.Logger) *DashboardUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &DashboardUseCase{store: store, universe: universe, metrics: metrics, l: l}
}

// Universe returns the configured issuers, maturities and defaults.
func (uc *DashboardUseCase) Universe() models.Universe {
	return uc.universe
}

// Outright returns the raw close series of one bond.
func (uc *DashboardUseCase) Outright(ctx context.Context, issuer, maturity string) (*models.Panel, error) {
	defer uc.observe("outright", time.Now())
	key := domrepo.NormalizeKey(issuer, maturity)
	title := fmt.Sprintf("%s %s Government Bond", key.Issuer, key.Maturity)

	s, ok, err := uc.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || s.Empty() {
		return noDataPanel(fmt.Sprintf("%s %s", key.Issuer, key.Maturity), key), nil
	}
	s.Name = title
	return seriesPanel(title, yieldAxis, s, nil), nil
}

// CreditSpread returns issuer1 − issuer2 at one maturity.
func (uc *DashboardUseCase) CreditSpread(ctx context.Context, issuer1, issuer2, maturity string) (*models.Panel, error) {
	defer uc.observe("credit_spread", time.Now())
	k1 := domrepo.NormalizeKey(issuer1, maturity)
	k2 := domrepo.NormalizeKey(issuer2, maturity)
	title := fmt.Sprintf("Credit Spread: %s - %s (%s)", k1.Issuer, k2.Issuer, k1.Maturity)

	ss, ok, err := uc.loadAll(ctx, k1, k2)
	if err != nil {
		return nil, err
	}
	if !ok {
		return noDataPanel(fmt.Sprintf("%s - %s (%s)", k1.Issuer, k2.Issuer, k1.Maturity), k1, k2), nil
	}
	return uc.derivedPanel(title, "Spread", analytics.Spread(title, ss[0], ss[1]), nil), nil
}

// CurveSpread returns maturity1 − maturity2 for one issuer.
func (uc *DashboardUseCase) CurveSpread(ctx context.Context, issuer, maturity1, maturity2 string) (*models.Panel, error) {
	defer uc.observe("curve_spread", time.Now())
	k1 := domrepo.NormalizeKey(issuer, maturity1)
	k2 := domrepo.NormalizeKey(issuer, maturity2)
	title := fmt.Sprintf("Curve Spread: %s - %s (%s)", k1.Maturity, k2.Maturity, k1.Issuer)

	ss, ok, err := uc.loadAll(ctx, k1, k2)
	if err != nil {
		return nil, err
	}
	if !ok {
		return noDataPanel(fmt.Sprintf("%s %s - %s", k1.Issuer, k1.Maturity, k2.Maturity), k1, k2), nil
	}
	return uc.derivedPanel(title, "Spread", analytics.Spread(title, ss[0], ss[1]), nil), nil
}

// Fly returns 2×mid − short − long for one issuer, with a zero reference line.
func (uc *DashboardUseCase) Fly(ctx context.Context, issuer, short, mid, long string) (*models.Panel, error) {
	defer uc.observe("fly", time.Now())
	ks := domrepo.NormalizeKey(issuer, short)
	km := domrepo.NormalizeKey(issuer, mid)
	kl := domrepo.NormalizeKey(issuer, long)
	title := fmt.Sprintf("%s Fly (%s, %s, %s)", ks.Issuer, ks.Maturity, km.Maturity, kl.Maturity)

	ss, ok, err := uc.loadAll(ctx, ks, km, kl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return noDataPanel(title, ks, km, kl), nil
	}
	return uc.derivedPanel(title, "Fly", analytics.Butterfly(title, ss[0], ss[1], ss[2]), []float64{0}), nil
}

// RateCurve returns, for every configured issuer and maturity, the latest close
// or, when both dates are given, the as-of variation end − start.
func (uc *DashboardUseCase) RateCurve(ctx context.Context, start, end *civil.Date) (*models.RateCurve, error) {
	defer uc.observe("rate_curve", time.Now())
	if (start == nil) != (end == nil) {
		return nil, fmt.Errorf("start and end must be given together")
	}
	if start != nil && start.After(*end) {
		return nil, fmt.Errorf("start %s is after end %s", start, end)
	}

	out := &models.RateCurve{
		Figure: models.Figure{
			Title:  "Government Bond Rate Curves (Last Close)",
			XLabel: "Maturity",
			YLabel: yieldAxis,
		},
		Rows: make([]models.CurvePoint, 0, len(uc.universe.Issuers)*len(uc.universe.Maturities)),
	}
	if start != nil {
		out.Start = start.String()
		out.End = end.String()
		out.Figure.Title = fmt.Sprintf("Government Bond Rate Curve Variation (%s → %s)", out.Start, out.End)
		out.Figure.YLabel = "Change"
	}

	traces := make(map[string]*models.Trace, len(uc.universe.Issuers))
	for _, issuer := range uc.universe.Issuers {
		traces[issuer] = &models.Trace{Name: issuer, Markers: true}
	}

	defined := 0
	for _, maturity := range uc.universe.Maturities {
		for _, issuer := range uc.universe.Issuers {
			key := domrepo.NormalizeKey(issuer, maturity)
			s, ok, err := uc.load(ctx, key)
			if err != nil {
				return nil, err
			}

			var value *float64
			if ok {
				if start != nil {
					if v, ok := analytics.Variation(s, *start, *end); ok {
						value = &v
					}
				} else if o, ok := analytics.Latest(s); ok {
					v := o.Value
					value = &v
				}
			}

			out.Rows = append(out.Rows, models.CurvePoint{Maturity: maturity, Issuer: issuer, Value: value})
			if value != nil {
				defined++
				tr := traces[issuer]
				tr.X = append(tr.X, maturity)
				tr.Y = append(tr.Y, *value)
			}
		}
	}

	for _, issuer := range uc.universe.Issuers {
		if tr := traces[issuer]; len(tr.Y) > 0 {
			out.Figure.Traces = append(out.Figure.Traces, *tr)
		}
	}
	out.NoData = defined == 0
	return out, nil
}

// load reads one snapshot. Unreadable files are logged and reported as missing
// so a corrupt snapshot degrades to a no-data panel.
func (uc *DashboardUseCase) load(ctx context.Context, key models.SeriesKey) (models.Series, bool, error) {
	s, ok, err := uc.store.Load(ctx, key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Series{}, false, ctxErr
		}
		uc.l.Error("snapshot unreadable", applogger.String("key", key.String()), applogger.Error(err))
		if uc.metrics != nil {
			uc.metrics.RecordError("snapshot_read")
		}
		return models.Series{}, false, nil
	}
	return s, ok, nil
}

// loadAll returns ok=false as soon as one key is missing or empty.
func (uc *DashboardUseCase) loadAll(ctx context.Context, keys ...models.SeriesKey) ([]models.Series, bool, error) {
	out := make([]models.Series, 0, len(keys))
	for _, k := range keys {
		s, ok, err := uc.load(ctx, k)
		if err != nil {
			return nil, false, err
		}
		if !ok || s.Empty() {
			return nil, false, nil
		}
		out = append(out, s)
	}
	return out, true, nil
}

func (uc *DashboardUseCase) derivedPanel(title, yLabel string, s models.Series, hlines []float64) *models.Panel {
	if s.Empty() {
		p := emptyPanel("No overlapping dates for " + title)
		p.Message = "the selected series share no dates"
		return p
	}
	return seriesPanel(title, yLabel, s, hlines)
}

func (uc *DashboardUseCase) observe(op string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

func seriesPanel(title, yLabel string, s models.Series, hlines []float64) *models.Panel {
	x := make([]string, s.Len())
	for i, o := range s.Observations {
		x[i] = o.Date.String()
	}
	return &models.Panel{
		Figure: models.Figure{
			Title:  title,
			XLabel: dateAxis,
			YLabel: yLabel,
			Traces: []models.Trace{{Name: s.Name, X: x, Y: s.Values()}},
			HLines: hlines,
		},
		Stats: analytics.Summarize(s.Values()),
	}
}

func noDataPanel(what string, keys ...models.SeriesKey) *models.Panel {
	p := emptyPanel("No data for " + what)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	p.Message = fmt.Sprintf("missing or empty snapshot among %v", names)
	return p
}

func emptyPanel(title string) *models.Panel {
	return &models.Panel{
		Figure: models.Figure{Title: title, XLabel: dateAxis, Traces: []models.Trace{}},
		Stats:  analytics.Summarize(nil),
		NoData: true,
	}
}

// ParseDateRange parses optional start/end query values.
func ParseDateRange(start, end string) (*civil.Date, *civil.Date, error) {
	if start == "" && end == "" {
		return nil, nil, nil
	}
	if start == "" || end == "" {
		return nil, nil, fmt.Errorf("start and end must be given together")
	}
	s, ok := util.ParseDate(start)
	if !ok {
		return nil, nil, fmt.Errorf("invalid start date %q", start)
	}
	e, ok := util.ParseDate(end)
	if !ok {
		return nil, nil, fmt.Errorf("invalid end date %q", end)
	}
	if s.After(e) {
		return nil, nil, fmt.Errorf("start %s is after end %s", s, e)
	}
	return &s, &e, nil
}
