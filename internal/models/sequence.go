package models

import "time"

// SequenceCounter mirrors the sequence_counters table, keyed by
// (account_id, namespace).
type SequenceCounter struct {
	AccountID     string    `json:"accountID"`
	Namespace     string    `json:"namespace"`
	LastValue     int64     `json:"lastValue"`
	Template      string    `json:"template"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
