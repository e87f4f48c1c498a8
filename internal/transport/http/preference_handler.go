package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/util"
)

type PreferenceHandler struct {
	prefs *service.PreferenceService
}

func RegisterPreferences(e *echo.Echo, deviceToken string, prefs *service.PreferenceService) {
	handler := &PreferenceHandler{prefs: prefs}

	g := e.Group("/api/v1", RequireDeviceToken(deviceToken))

	g.GET("/favorites", handler.listFavorites)
	g.PUT("/favorites", handler.replaceFavorites)
	g.POST("/favorites/:place_id", handler.addFavorite)
	g.DELETE("/favorites/:place_id", handler.removeFavorite)

	g.GET("/visited", handler.listVisited)
	g.POST("/visited/:place_id/toggle", handler.toggleVisited)

	g.GET("/categories", handler.listCategories)
	g.PUT("/categories", handler.replaceCategories)
	g.POST("/categories/toggle", handler.toggleCategory)

	g.GET("/settings", handler.getSettings)
	g.PUT("/settings", handler.updateSettings)
}

func parsePlaceID(c echo.Context) (domain.PlaceID, error) {
	raw := strings.TrimSpace(c.Param("place_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return domain.PlaceID(id), nil
}

func (h *PreferenceHandler) listFavorites(c echo.Context) error {
	favorites, err := h.prefs.Favorites(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read favorites"))
	}
	return c.JSON(http.StatusOK, util.Data("favorites", favorites.Sorted()))
}

func (h *PreferenceHandler) replaceFavorites(c echo.Context) error {
	var req struct {
		Favorites []domain.PlaceID `json:"favorites"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.prefs.SaveFavorites(c.Request().Context(), domain.NewPlaceIDSet(req.Favorites...)); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not save favorites"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PreferenceHandler) addFavorite(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}
	if err := h.prefs.AddFavorite(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PreferenceHandler) removeFavorite(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}
	if err := h.prefs.RemoveFavorite(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PreferenceHandler) listVisited(c echo.Context) error {
	visited, err := h.prefs.Visited(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read visited places"))
	}
	return c.JSON(http.StatusOK, util.Data("visited", visited.Sorted()))
}

func (h *PreferenceHandler) toggleVisited(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}
	visited, err := h.prefs.ToggleVisited(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not update visited places"))
	}
	return c.JSON(http.StatusOK, util.Data("visited", visited))
}

func (h *PreferenceHandler) listCategories(c echo.Context) error {
	categories, err := h.prefs.SelectedCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read categories"))
	}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	return c.JSON(http.StatusOK, util.Data("categories", names))
}

func (h *PreferenceHandler) replaceCategories(c echo.Context) error {
	var req struct {
		Categories []string `json:"categories"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.prefs.SaveSelectedCategories(c.Request().Context(), domain.NewCategorySet(req.Categories...)); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not save categories"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PreferenceHandler) toggleCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, util.Error("name is required"))
	}
	selected, err := h.prefs.ToggleCategory(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not update categories"))
	}
	return c.JSON(http.StatusOK, util.Data("selected", selected))
}

type settingsResponse struct {
	MaxDistanceFilter             *float64         `json:"max_distance_filter"`
	SortOrder                     domain.SortOrder `json:"sort_order"`
	ShowOnlyUnvisited             bool             `json:"show_only_unvisited"`
	ProximityNotificationsEnabled bool             `json:"proximity_notifications_enabled"`
	DarkMapMode                   bool             `json:"dark_map_mode"`
}

func (h *PreferenceHandler) getSettings(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		resp settingsResponse
		err  error
	)
	if resp.MaxDistanceFilter, err = h.prefs.MaxDistanceFilter(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read settings"))
	}
	if resp.SortOrder, err = h.prefs.SortOrder(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read settings"))
	}
	if resp.ShowOnlyUnvisited, err = h.prefs.ShowOnlyUnvisited(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read settings"))
	}
	if resp.ProximityNotificationsEnabled, err = h.prefs.ProximityNotificationsEnabled(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read settings"))
	}
	if resp.DarkMapMode, err = h.prefs.DarkMapMode(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read settings"))
	}
	return c.JSON(http.StatusOK, util.Data("settings", resp))
}

func (h *PreferenceHandler) updateSettings(c echo.Context) error {
	var req struct {
		MaxDistanceFilter             *float64 `json:"max_distance_filter"`
		ClearMaxDistanceFilter        bool     `json:"clear_max_distance_filter"`
		SortOrder                     *string  `json:"sort_order"`
		ShowOnlyUnvisited             *bool    `json:"show_only_unvisited"`
		ProximityNotificationsEnabled *bool    `json:"proximity_notifications_enabled"`
		DarkMapMode                   *bool    `json:"dark_map_mode"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.MaxDistanceFilter != nil && *req.MaxDistanceFilter < 0 {
		return c.JSON(http.StatusBadRequest, util.Error("max_distance_filter must not be negative"))
	}

	ctx := c.Request().Context()
	if req.ClearMaxDistanceFilter {
		if err := h.prefs.SetMaxDistanceFilter(ctx, nil); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	} else if req.MaxDistanceFilter != nil {
		if err := h.prefs.SetMaxDistanceFilter(ctx, req.MaxDistanceFilter); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	}
	if req.SortOrder != nil {
		if err := h.prefs.SetSortOrder(ctx, domain.ParseSortOrder(*req.SortOrder)); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	}
	if req.ShowOnlyUnvisited != nil {
		if err := h.prefs.SetShowOnlyUnvisited(ctx, *req.ShowOnlyUnvisited); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	}
	if req.ProximityNotificationsEnabled != nil {
		if err := h.prefs.SetProximityNotificationsEnabled(ctx, *req.ProximityNotificationsEnabled); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	}
	if req.DarkMapMode != nil {
		if err := h.prefs.SetDarkMapMode(ctx, *req.DarkMapMode); err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("could not save settings"))
		}
	}
	return h.getSettings(c)
}
