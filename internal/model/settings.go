package model

import "time"

// Setting key for the V-Bucks exchange rate.
const SettingVbucksRate = "vbucks_rate"

// Setting represents a key/value configuration row.
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RateHistoryEntry records a single V-Bucks rate change and who made it.
type RateHistoryEntry struct {
	ID        int64     `json:"id" db:"id"`
	Rate      float64   `json:"rate" db:"rate"`
	CreatedBy *int64    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VbucksRate is the payload for rate read/update endpoints.
type VbucksRate struct {
	Rate float64 `json:"rate"`
}
