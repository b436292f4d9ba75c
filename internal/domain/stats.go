package domain

// StoreStats summarizes the backing store for health reporting.
type StoreStats struct {
	Driver     string           `json:"driver"`
	Migrations int              `json:"migrations"`
	Counts     map[string]int64 `json:"counts"`
}
