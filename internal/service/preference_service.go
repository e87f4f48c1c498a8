package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/repository/ports"
)

var (
	ErrNoteNotFound      = errors.New("no note stored for place")
	ErrItineraryNotFound = errors.New("itinerary not found")
	ErrTripNotFound      = errors.New("trip not found")
)

// Settings-store keys. Each key holds one whole-value JSON blob; the store
// guarantees atomic per-key writes, so readers never observe a partial value.
const (
	keyFavorites              = "favorites"
	keyVisited                = "visited"
	keySelectedCategories     = "selected-categories"
	keyNotes                  = "notes"
	keyItineraries            = "itineraries"
	keySavedTrips             = "saved-trips"
	keyMaxDistanceFilter      = "max-distance-filter"
	keySortOrder              = "sort-order"
	keyShowOnlyUnvisited      = "show-only-unvisited"
	keyProximityNotifications = "proximity-notifications-enabled"
	keyDarkMapMode            = "dark-map-mode"
)

// PreferenceService is the typed facade over the settings store. Getters
// return the empty/default value with a nil error when nothing is stored, and
// the default plus a decode error when the stored blob is corrupted, so
// callers can tell the two apart. Mutators are read-modify-write over the
// whole collection; concurrent mutators race last-write-wins, which is
// accepted for a single-user local store.
type PreferenceService struct {
	settings ports.SettingsStore
	now      func() time.Time
}

func NewPreferenceService(settings ports.SettingsStore) *PreferenceService {
	return &PreferenceService{settings: settings, now: time.Now}
}

func (s *PreferenceService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("preferences: read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("preferences: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *PreferenceService) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("preferences: encode %s: %w", key, err)
	}
	if err := s.settings.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("preferences: write %s: %w", key, err)
	}
	return nil
}

// Favorites

func (s *PreferenceService) Favorites(ctx context.Context) (domain.PlaceIDSet, error) {
	var ids []domain.PlaceID
	_, err := s.getJSON(ctx, keyFavorites, &ids)
	return domain.NewPlaceIDSet(ids...), err
}

func (s *PreferenceService) SaveFavorites(ctx context.Context, favorites domain.PlaceIDSet) error {
	return s.setJSON(ctx, keyFavorites, favorites.Sorted())
}

func (s *PreferenceService) AddFavorite(ctx context.Context, id domain.PlaceID) error {
	favorites, err := s.Favorites(ctx)
	if err != nil {
		return err
	}
	favorites.Add(id)
	return s.SaveFavorites(ctx, favorites)
}

func (s *PreferenceService) RemoveFavorite(ctx context.Context, id domain.PlaceID) error {
	favorites, err := s.Favorites(ctx)
	if err != nil {
		return err
	}
	favorites.Remove(id)
	return s.SaveFavorites(ctx, favorites)
}

func (s *PreferenceService) IsFavorite(ctx context.Context, id domain.PlaceID) (bool, error) {
	favorites, err := s.Favorites(ctx)
	if err != nil {
		return false, err
	}
	return favorites.Contains(id), nil
}

// Visited

func (s *PreferenceService) Visited(ctx context.Context) (domain.PlaceIDSet, error) {
	var ids []domain.PlaceID
	_, err := s.getJSON(ctx, keyVisited, &ids)
	return domain.NewPlaceIDSet(ids...), err
}

func (s *PreferenceService) SaveVisited(ctx context.Context, visited domain.PlaceIDSet) error {
	return s.setJSON(ctx, keyVisited, visited.Sorted())
}

func (s *PreferenceService) MarkVisited(ctx context.Context, id domain.PlaceID) error {
	visited, err := s.Visited(ctx)
	if err != nil {
		return err
	}
	visited.Add(id)
	return s.SaveVisited(ctx, visited)
}

// ToggleVisited adds the place when absent and removes it when present.
// Calling it twice in a row restores the original membership.
func (s *PreferenceService) ToggleVisited(ctx context.Context, id domain.PlaceID) (bool, error) {
	visited, err := s.Visited(ctx)
	if err != nil {
		return false, err
	}
	nowVisited := !visited.Contains(id)
	if nowVisited {
		visited.Add(id)
	} else {
		visited.Remove(id)
	}
	if err := s.SaveVisited(ctx, visited); err != nil {
		return false, err
	}
	return nowVisited, nil
}

func (s *PreferenceService) IsVisited(ctx context.Context, id domain.PlaceID) (bool, error) {
	visited, err := s.Visited(ctx)
	if err != nil {
		return false, err
	}
	return visited.Contains(id), nil
}

// Categories

func (s *PreferenceService) SelectedCategories(ctx context.Context) (domain.CategorySet, error) {
	var names []string
	_, err := s.getJSON(ctx, keySelectedCategories, &names)
	return domain.NewCategorySet(names...), err
}

func (s *PreferenceService) SaveSelectedCategories(ctx context.Context, categories domain.CategorySet) error {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return s.setJSON(ctx, keySelectedCategories, names)
}

func (s *PreferenceService) ToggleCategory(ctx context.Context, name string) (bool, error) {
	categories, err := s.SelectedCategories(ctx)
	if err != nil {
		return false, err
	}
	selected := !categories.Contains(name)
	if selected {
		categories.Add(name)
	} else {
		categories.Remove(name)
	}
	if err := s.SaveSelectedCategories(ctx, categories); err != nil {
		return false, err
	}
	return selected, nil
}

// Notes

func (s *PreferenceService) Notes(ctx context.Context) (map[domain.PlaceID]domain.PlaceNote, error) {
	notes := make(map[domain.PlaceID]domain.PlaceNote)
	_, err := s.getJSON(ctx, keyNotes, &notes)
	return notes, err
}

func (s *PreferenceService) Note(ctx context.Context, id domain.PlaceID) (*domain.PlaceNote, error) {
	notes, err := s.Notes(ctx)
	if err != nil {
		return nil, err
	}
	note, ok := notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return &note, nil
}

// SetNote stores the note for a place, replacing any previous one.
func (s *PreferenceService) SetNote(ctx context.Context, note domain.PlaceNote) error {
	notes, err := s.Notes(ctx)
	if err != nil {
		return err
	}
	note.UpdatedAt = s.now().UTC()
	notes[note.PlaceID] = note
	return s.setJSON(ctx, keyNotes, notes)
}

func (s *PreferenceService) DeleteNote(ctx context.Context, id domain.PlaceID) error {
	notes, err := s.Notes(ctx)
	if err != nil {
		return err
	}
	if _, ok := notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(notes, id)
	return s.setJSON(ctx, keyNotes, notes)
}

// Itineraries

func (s *PreferenceService) Itineraries(ctx context.Context) ([]domain.Itinerary, error) {
	itineraries := make([]domain.Itinerary, 0)
	_, err := s.getJSON(ctx, keyItineraries, &itineraries)
	return itineraries, err
}

func (s *PreferenceService) Itinerary(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	itineraries, err := s.Itineraries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range itineraries {
		if itineraries[i].ID == id {
			return &itineraries[i], nil
		}
	}
	return nil, ErrItineraryNotFound
}

// SaveItinerary updates the stored itinerary with a matching ID in place, or
// appends when the ID is new.
func (s *PreferenceService) SaveItinerary(ctx context.Context, itinerary domain.Itinerary) error {
	itineraries, err := s.Itineraries(ctx)
	if err != nil {
		return err
	}
	itinerary.UpdatedAt = s.now().UTC()
	replaced := false
	for i := range itineraries {
		if itineraries[i].ID == itinerary.ID {
			itinerary.CreatedAt = itineraries[i].CreatedAt
			itineraries[i] = itinerary
			replaced = true
			break
		}
	}
	if !replaced {
		if itinerary.CreatedAt.IsZero() {
			itinerary.CreatedAt = itinerary.UpdatedAt
		}
		itineraries = append(itineraries, itinerary)
	}
	return s.setJSON(ctx, keyItineraries, itineraries)
}

func (s *PreferenceService) DeleteItinerary(ctx context.Context, id uuid.UUID) error {
	itineraries, err := s.Itineraries(ctx)
	if err != nil {
		return err
	}
	kept := itineraries[:0]
	for _, it := range itineraries {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(itineraries) {
		return ErrItineraryNotFound
	}
	return s.setJSON(ctx, keyItineraries, kept)
}

// Trips

// SavedTrips returns all stored trips sorted by start date ascending,
// regardless of insertion order.
func (s *PreferenceService) SavedTrips(ctx context.Context) ([]domain.Trip, error) {
	trips := make([]domain.Trip, 0)
	_, err := s.getJSON(ctx, keySavedTrips, &trips)
	domain.SortTripsByStart(trips)
	return trips, err
}

func (s *PreferenceService) Trip(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	trips, err := s.SavedTrips(ctx)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		if trips[i].ID == id {
			return &trips[i], nil
		}
	}
	return nil, ErrTripNotFound
}

// SaveTrip removes any stored trip with the same ID and appends the new
// value, so saving is an insert-or-replace. Ordering is restored on read.
func (s *PreferenceService) SaveTrip(ctx context.Context, trip domain.Trip) error {
	trips, err := s.SavedTrips(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.Trip, 0, len(trips)+1)
	for _, t := range trips {
		if t.ID != trip.ID {
			kept = append(kept, t)
		} else if trip.CreatedAt.IsZero() {
			trip.CreatedAt = t.CreatedAt
		}
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = s.now().UTC()
	}
	kept = append(kept, trip)
	return s.setJSON(ctx, keySavedTrips, kept)
}

func (s *PreferenceService) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	trips, err := s.SavedTrips(ctx)
	if err != nil {
		return err
	}
	kept := trips[:0]
	for _, t := range trips {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(trips) {
		return ErrTripNotFound
	}
	return s.setJSON(ctx, keySavedTrips, kept)
}

// Scalar settings

// MaxDistanceFilter returns the stored filter in meters, or nil when no
// filter is set. Zero is a legitimate stored value.
func (s *PreferenceService) MaxDistanceFilter(ctx context.Context) (*float64, error) {
	var value *float64
	_, err := s.getJSON(ctx, keyMaxDistanceFilter, &value)
	return value, err
}

// SetMaxDistanceFilter stores the filter; nil clears it.
func (s *PreferenceService) SetMaxDistanceFilter(ctx context.Context, value *float64) error {
	return s.setJSON(ctx, keyMaxDistanceFilter, value)
}

func (s *PreferenceService) SortOrder(ctx context.Context) (domain.SortOrder, error) {
	var raw string
	found, err := s.getJSON(ctx, keySortOrder, &raw)
	if err != nil || !found {
		return domain.DefaultSortOrder, err
	}
	return domain.ParseSortOrder(raw), nil
}

func (s *PreferenceService) SetSortOrder(ctx context.Context, order domain.SortOrder) error {
	return s.setJSON(ctx, keySortOrder, string(order))
}

func (s *PreferenceService) ShowOnlyUnvisited(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyShowOnlyUnvisited)
}

func (s *PreferenceService) SetShowOnlyUnvisited(ctx context.Context, enabled bool) error {
	return s.setJSON(ctx, keyShowOnlyUnvisited, enabled)
}

func (s *PreferenceService) ProximityNotificationsEnabled(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyProximityNotifications)
}

func (s *PreferenceService) SetProximityNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.setJSON(ctx, keyProximityNotifications, enabled)
}

func (s *PreferenceService) DarkMapMode(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyDarkMapMode)
}

func (s *PreferenceService) SetDarkMapMode(ctx context.Context, enabled bool) error {
	return s.setJSON(ctx, keyDarkMapMode, enabled)
}

func (s *PreferenceService) getBool(ctx context.Context, key string) (bool, error) {
	var value bool
	_, err := s.getJSON(ctx, key, &value)
	return value, err
}
