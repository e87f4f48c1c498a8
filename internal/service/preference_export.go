package service

import (
	"context"
	"slices"

	"github.com/roamnest/roamnest-core/internal/domain"
)

// PreferenceExport is the whole preference set as one document, used for
// device backups and restores.
type PreferenceExport struct {
	Favorites                     []domain.PlaceID                    `json:"favorites"`
	Visited                       []domain.PlaceID                    `json:"visited"`
	SelectedCategories            []string                            `json:"selected_categories"`
	Notes                         map[domain.PlaceID]domain.PlaceNote `json:"notes"`
	Itineraries                   []domain.Itinerary                  `json:"itineraries"`
	Trips                         []domain.Trip                       `json:"trips"`
	MaxDistanceFilter             *float64                            `json:"max_distance_filter,omitempty"`
	SortOrder                     domain.SortOrder                    `json:"sort_order"`
	ShowOnlyUnvisited             bool                                `json:"show_only_unvisited"`
	ProximityNotificationsEnabled bool                                `json:"proximity_notifications_enabled"`
	DarkMapMode                   bool                                `json:"dark_map_mode"`
}

// Export gathers every stored preference. The first read error aborts the
// export so a corrupted key never produces a silently truncated backup.
func (s *PreferenceService) Export(ctx context.Context) (*PreferenceExport, error) {
	var (
		export PreferenceExport
		err    error
	)

	favorites, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	export.Favorites = favorites.Sorted()

	visited, err := s.Visited(ctx)
	if err != nil {
		return nil, err
	}
	export.Visited = visited.Sorted()

	categories, err := s.SelectedCategories(ctx)
	if err != nil {
		return nil, err
	}
	export.SelectedCategories = make([]string, 0, len(categories))
	for name := range categories {
		export.SelectedCategories = append(export.SelectedCategories, name)
	}
	slices.Sort(export.SelectedCategories)

	if export.Notes, err = s.Notes(ctx); err != nil {
		return nil, err
	}
	if export.Itineraries, err = s.Itineraries(ctx); err != nil {
		return nil, err
	}
	if export.Trips, err = s.SavedTrips(ctx); err != nil {
		return nil, err
	}
	if export.MaxDistanceFilter, err = s.MaxDistanceFilter(ctx); err != nil {
		return nil, err
	}
	if export.SortOrder, err = s.SortOrder(ctx); err != nil {
		return nil, err
	}
	if export.ShowOnlyUnvisited, err = s.ShowOnlyUnvisited(ctx); err != nil {
		return nil, err
	}
	if export.ProximityNotificationsEnabled, err = s.ProximityNotificationsEnabled(ctx); err != nil {
		return nil, err
	}
	if export.DarkMapMode, err = s.DarkMapMode(ctx); err != nil {
		return nil, err
	}
	return &export, nil
}

// Import replaces every stored preference with the exported values.
func (s *PreferenceService) Import(ctx context.Context, export PreferenceExport) error {
	if err := s.SaveFavorites(ctx, domain.NewPlaceIDSet(export.Favorites...)); err != nil {
		return err
	}
	if err := s.SaveVisited(ctx, domain.NewPlaceIDSet(export.Visited...)); err != nil {
		return err
	}
	if err := s.SaveSelectedCategories(ctx, domain.NewCategorySet(export.SelectedCategories...)); err != nil {
		return err
	}
	notes := export.Notes
	if notes == nil {
		notes = make(map[domain.PlaceID]domain.PlaceNote)
	}
	if err := s.setJSON(ctx, keyNotes, notes); err != nil {
		return err
	}
	itineraries := export.Itineraries
	if itineraries == nil {
		itineraries = make([]domain.Itinerary, 0)
	}
	if err := s.setJSON(ctx, keyItineraries, itineraries); err != nil {
		return err
	}
	trips := export.Trips
	if trips == nil {
		trips = make([]domain.Trip, 0)
	}
	if err := s.setJSON(ctx, keySavedTrips, trips); err != nil {
		return err
	}
	if err := s.SetMaxDistanceFilter(ctx, export.MaxDistanceFilter); err != nil {
		return err
	}
	if err := s.SetSortOrder(ctx, domain.ParseSortOrder(string(export.SortOrder))); err != nil {
		return err
	}
	if err := s.SetShowOnlyUnvisited(ctx, export.ShowOnlyUnvisited); err != nil {
		return err
	}
	if err := s.SetProximityNotificationsEnabled(ctx, export.ProximityNotificationsEnabled); err != nil {
		return err
	}
	return s.SetDarkMapMode(ctx, export.DarkMapMode)
}
