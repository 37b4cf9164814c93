package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel)

	l.Info("snapshot loaded", String("key", "US_10Y"), Int("rows", 3), Float64("last", 4.25))

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["message"] != "snapshot loaded" || m["key"] != "US_10Y" {
		t.Fatalf("unexpected event %v", m)
	}
	if m["rows"].(float64) != 3 || m["last"].(float64) != 4.25 {
		t.Fatalf("unexpected numbers %v", m)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Error("fetch failed", Error(errors.New("boom")))
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Fatalf("expected error in output, got %s", buf.String())
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel).With(String("component", "fetch"))
	l.Info("start")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"fetch"`)) {
		t.Fatalf("missing component field: %s", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}
