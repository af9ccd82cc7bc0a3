package domain

import "time"

type CardID string

// Status is the market availability of a card as observed on fut.gg.
type Status string

const (
	StatusNormal  Status = "NORMAL"
	StatusExtinct Status = "EXTINCT"
)

// Card is a monitored player card from the fut.gg catalog.
type Card struct {
	ID        CardID    `json:"id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating,omitempty"`
	Position  string    `json:"position,omitempty"`
	Club      string    `json:"club,omitempty"`
	Nation    string    `json:"nation,omitempty"`
	League    string    `json:"league,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Observation is a single status reading for one card.
type Observation struct {
	CardID     CardID    `json:"card_id"`
	Status     Status    `json:"status"`
	ObservedAt time.Time `json:"observed_at"`
}

// ExtinctAlert is the payload handed to notification channels when a card
// goes extinct and the cooldown allows a send.
type ExtinctAlert struct {
	CardID     CardID    `json:"card_id"`
	Name       string    `json:"name"`
	Rating     int       `json:"rating,omitempty"`
	Position   string    `json:"position,omitempty"`
	Club       string    `json:"club,omitempty"`
	Nation     string    `json:"nation,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	SourceURL  string    `json:"source_url"`
	ObservedAt time.Time `json:"observed_at"`
}
