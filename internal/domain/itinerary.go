package domain

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary is a user-authored ordered plan of places, distinct from a Trip
// (which represents a booked, dated travel period).
type Itinerary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Notes     *string   `json:"notes,omitempty"`
	PlaceIDs  []PlaceID `json:"place_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
