package models

import "time"

// UserReview is a single diner-submitted rating for a venue. Reviews are
// append-only; the store never mutates or deletes them.
type UserReview struct {
	ID          string    `json:"id"`
	VenueID     string    `json:"venue_id"`
	Rating      float64   `json:"rating"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewDocument is the shape archived in Elasticsearch by the worker.
type ReviewDocument struct {
	ID          string    `json:"id"`
	VenueID     string    `json:"venue_id"`
	Rating      float64   `json:"rating"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
	ArchivedAt  time.Time `json:"archived_at"`
}
