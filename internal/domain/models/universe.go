package models

// Universe is the configured set of series the dashboard offers.
type Universe struct {
	Issuers    []string         `json:"issuers"`
	Maturities []string         `json:"maturities"`
	Defaults   UniverseDefaults `json:"defaults"`
}

type UniverseDefaults struct {
	Issuer     string `json:"issuer"`
	PeerIssuer string `json:"peer_issuer"`
	Maturity   string `json:"maturity"`
}

// Keys returns every issuer × maturity pair, issuers outermost.
func (u Universe) Keys() []SeriesKey {
	out := make([]SeriesKey, 0, len(u.Issuers)*len(u.Maturities))
	for _, i := range u.Issuers {
		for _, m := range u.Maturities {
			out = append(out, SeriesKey{Issuer: i, Maturity: m})
		}
	}
	return out
}
