package repository

import "testing"

func TestNormalizeKey(t *testing.T) {
	k := NormalizeKey(" us", "10y ")
	if k.Issuer != "US" || k.Maturity != "10Y" {
		t.Fatalf("unexpected key %+v", k)
	}
	if k.String() != "US_10Y" {
		t.Fatalf("unexpected string %s", k.String())
	}
}

func TestIsValidKey(t *testing.T) {
	cases := []struct {
		issuer, maturity string
		ok               bool
	}{
		{"US", "10Y", true},
		{"DE", "6M", true},
		{"ZZ", "99Y", true},
		{"USA", "2Y", true},
		{"U", "2Y", false},
		{"US", "100Y", false},
		{"US", "10D", false},
		{"../US", "10Y", false},
		{"us", "10Y", false},
	}
	for _, c := range cases {
		k := NormalizeKey("", "")
		k.Issuer, k.Maturity = c.issuer, c.maturity
		if got := IsValidKey(k); got != c.ok {
			t.Fatalf("IsValidKey(%s,%s)=%v want %v", c.issuer, c.maturity, got, c.ok)
		}
	}
}
