package models

import "time"

// Schedule is a flat calendar record with no relationships. Date and
// time are kept as plain strings, matching the external contract.
type Schedule struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
