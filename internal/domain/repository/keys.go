package repository

import (
	"regexp"
	"strings"

	"GovTracker/internal/domain/models"
)

var (
	issuerRe   = regexp.MustCompile(`^[A-Z]{2,3}$`)
	maturityRe = regexp.MustCompile(`^[0-9]{1,2}[MY]$`)
)

// IsValidIssuer returns true for two or three upper-case letters.
func IsValidIssuer(s string) bool { return issuerRe.MatchString(s) }

// IsValidMaturity returns true for tenors such as 6M, 2Y or 30Y.
func IsValidMaturity(s string) bool { return maturityRe.MatchString(s) }

// NormalizeKey upper-cases and trims both parts of a key.
func NormalizeKey(issuer, maturity string) models.SeriesKey {
	return models.SeriesKey{
		Issuer:   strings.ToUpper(strings.TrimSpace(issuer)),
		Maturity: strings.ToUpper(strings.TrimSpace(maturity)),
	}
}

// IsValidKey reports whether a key can name a snapshot file.
func IsValidKey(k models.SeriesKey) bool {
	return IsValidIssuer(k.Issuer) && IsValidMaturity(k.Maturity)
}
