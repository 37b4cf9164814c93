package models

import "time"

// SnapshotRefreshed is published after the fetch step rewrites a snapshot file.
type SnapshotRefreshed struct {
	Issuer      string    `json:"issuer"`
	Maturity    string    `json:"maturity"`
	Rows        int       `json:"rows"`
	LastDate    string    `json:"last_date,omitempty"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

func (e SnapshotRefreshed) Key() SeriesKey {
	return SeriesKey{Issuer: e.Issuer, Maturity: e.Maturity}
}
