package models

import "time"

// Reading is a single validated temperature sample.
type Reading struct {
	ID      int       `json:"id"`
	Source  string    `json:"source"` // sensor identifier, e.g. "aht-sim"
	TempC   float64   `json:"temp_c"`
	TempF   float64   `json:"temp_f"`
	TakenAt time.Time `json:"taken_at"`
}
