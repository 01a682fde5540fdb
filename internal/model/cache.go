package model

import "time"

// Cache entry kinds.
const (
	CacheKindHistory      = "history"
	CacheKindFundamentals = "fundamentals"
)

// CacheEntry is one cached market data payload.
type CacheEntry struct {
	Key       string
	Kind      string
	Symbol    string
	Payload   []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// CacheStats summarizes the market data cache contents.
type CacheStats struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}
