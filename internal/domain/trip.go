package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Trip is a booked, dated travel period. Trips are persisted as a list and
// always returned sorted by start date ascending.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SortTripsByStart orders trips by start date ascending, earliest first.
// Ties keep their relative order.
func SortTripsByStart(trips []Trip) {
	slices.SortStableFunc(trips, func(a, b Trip) int {
		return a.StartDate.Compare(b.StartDate)
	})
}
