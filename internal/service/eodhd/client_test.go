package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"GovTracker/internal/domain/models"
)

func TestFetchEOD(t *testing.T) {
	var gotPath, gotToken, gotFmt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("api_token")
		gotFmt = r.URL.Query().Get("fmt")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2024-01-02","open":3.9,"high":4.0,"low":3.8,"close":3.95,"adjusted_close":3.95,"volume":0},
			{"date":"2024-01-03","open":null,"high":null,"low":null,"close":null,"adjusted_close":null,"volume":null},
			{"date":"2024-01-04","close":4.01}
		]`))
	}))
	defer srv.Close()

	c := New("secret", WithBaseURL(srv.URL+"/api/eod"))
	recs, err := c.FetchEOD(context.Background(), models.SeriesKey{Issuer: "US", Maturity: "10Y"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/api/eod/US10Y.GBOND" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotToken != "secret" || gotFmt != "json" {
		t.Fatalf("unexpected query token=%q fmt=%q", gotToken, gotFmt)
	}
	if len(recs) != 2 {
		t.Fatalf("expected null close to be dropped, got %d rows", len(recs))
	}
	if recs[0].Close != 3.95 || recs[1].Date != "2024-01-04" || recs[1].Open != 0 {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestFetchEODNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Ticker Not Found.", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("secret", WithBaseURL(srv.URL))
	_, err := c.FetchEOD(context.Background(), models.SeriesKey{Issuer: "ZZ", Maturity: "99Y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchEODServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("secret", WithBaseURL(srv.URL))
	_, err := c.FetchEOD(context.Background(), models.SeriesKey{Issuer: "US", Maturity: "2Y"})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestTicker(t *testing.T) {
	c := New("x", WithExchange("BOND"))
	if got := c.Ticker(models.SeriesKey{Issuer: "DE", Maturity: "5Y"}); got != "DE5Y.BOND" {
		t.Fatalf("ticker = %s", got)
	}
}
