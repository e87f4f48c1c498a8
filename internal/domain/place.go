package domain

import (
	"slices"
	"time"
)

// PlaceID is the backend-assigned identifier for a catalogued place.
type PlaceID int64

type Place struct {
	ID        PlaceID  `json:"id"`
	Name      string   `json:"name"`
	Category  *string  `json:"category,omitempty"`
	City      *string  `json:"city,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	ImageURL  *string  `json:"image_url,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
}

// PlaceNote is a user-authored note attached to a place. A place carries at
// most one note; writing again replaces the previous text.
type PlaceNote struct {
	PlaceID   PlaceID   `json:"place_id"`
	Text      string    `json:"text"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceIDSet is an unordered set of place identifiers. Persisted values are
// written via Sorted so stored bytes stay stable across writes.
type PlaceIDSet map[PlaceID]struct{}

func NewPlaceIDSet(ids ...PlaceID) PlaceIDSet {
	s := make(PlaceIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s PlaceIDSet) Contains(id PlaceID) bool {
	_, ok := s[id]
	return ok
}

func (s PlaceIDSet) Add(id PlaceID)    { s[id] = struct{}{} }
func (s PlaceIDSet) Remove(id PlaceID) { delete(s, id) }

// Sorted returns the members in ascending order.
func (s PlaceIDSet) Sorted() []PlaceID {
	out := make([]PlaceID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same members.
func (s PlaceIDSet) Equal(other PlaceIDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
