package models

// EODRecord is one end-of-day bar as written to a snapshot file.
// Date is kept as the provider's YYYY-MM-DD string.
type EODRecord struct {
	Date          string  `json:"date" parquet:"date"`
	Open          float64 `json:"open" parquet:"open,optional"`
	High          float64 `json:"high" parquet:"high,optional"`
	Low           float64 `json:"low" parquet:"low,optional"`
	Close         float64 `json:"close" parquet:"close"`
	AdjustedClose float64 `json:"adjusted_close" parquet:"adjusted_close,optional"`
	Volume        int64   `json:"volume" parquet:"volume,optional"`
}
