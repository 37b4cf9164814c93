package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	xhttp "GovTracker/pkg/http"
	applogger "GovTracker/pkg/logger"
)

// ErrNotFound is returned when the provider knows no such ticker.
var ErrNotFound = errors.New("eodhd: ticker not found")

// Client pulls end-of-day history from the EODHD REST API.
type Client struct {
	http     *xhttp.Client
	baseURL  string
	token    string
	exchange string
	l        *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithExchange sets the exchange suffix of tickers (GBOND).
func WithExchange(ex string) Option {
	return func(c *Client) {
		c.exchange = ex
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.l = l
	}
}

// WithHTTPClient sets the transport client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  "https://eodhd.com/api/eod",
		token:    token,
		exchange: "GBOND",
		l:        applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(30 * time.Second))
	}
	return c
}

// Ticker returns the provider symbol of key, e.g. US10Y.GBOND.
func (c *Client) Ticker(key models.SeriesKey) string {
	return fmt.Sprintf("%s%s.%s", key.Issuer, key.Maturity, c.exchange)
}

// eodBar mirrors one element of the provider's JSON array. Any field may be null.
type eodBar struct {
	Date          string   `json:"date"`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Close         *float64 `json:"close"`
	AdjustedClose *float64 `json:"adjusted_close"`
	Volume        *float64 `json:"volume"`
}

// FetchEOD returns the full daily history of key. Bars without a close are dropped.
func (c *Client) FetchEOD(ctx context.Context, key models.SeriesKey) ([]models.EODRecord, error) {
	ticker := c.Ticker(key)
	var bars []eodBar
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/" + ticker,
		QueryParams: map[string][]string{
			"api_token": {c.token},
			"fmt":       {"json"},
		},
	}, &bars)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	out := make([]models.EODRecord, 0, len(bars))
	skipped := 0
	for _, b := range bars {
		if b.Close == nil || b.Date == "" {
			skipped++
			continue
		}
		out = append(out, models.EODRecord{
			Date:          b.Date,
			Open:          deref(b.Open),
			High:          deref(b.High),
			Low:           deref(b.Low),
			Close:         *b.Close,
			AdjustedClose: deref(b.AdjustedClose),
			Volume:        int64(deref(b.Volume)),
		})
	}
	if skipped > 0 {
		c.l.Debug("eodhd bars without close skipped",
			applogger.String("ticker", ticker),
			applogger.Int("skipped", skipped),
		)
	}
	return out, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

var _ domrepo.EODSource = (*Client)(nil)
