package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/util"
)

type ItineraryHandler struct {
	prefs *service.PreferenceService
}

func RegisterItineraries(e *echo.Echo, deviceToken string, prefs *service.PreferenceService) {
	handler := &ItineraryHandler{prefs: prefs}

	g := e.Group("/api/v1/itineraries", RequireDeviceToken(deviceToken))
	g.GET("", handler.list)
	g.POST("", handler.create)
	g.PUT("/:id", handler.update)
	g.DELETE("/:id", handler.remove)
}

type itineraryRequest struct {
	Title    string           `json:"title"`
	Notes    *string          `json:"notes"`
	PlaceIDs []domain.PlaceID `json:"place_ids"`
}

func (r itineraryRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

func (h *ItineraryHandler) list(c echo.Context) error {
	itineraries, err := h.prefs.Itineraries(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read itineraries"))
	}
	return c.JSON(http.StatusOK, util.Data("itineraries", itineraries))
}

func (h *ItineraryHandler) create(c echo.Context) error {
	var req itineraryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	itinerary := domain.Itinerary{
		ID:       uuid.New(),
		Title:    strings.TrimSpace(req.Title),
		Notes:    req.Notes,
		PlaceIDs: req.PlaceIDs,
	}
	return h.save(c, itinerary, http.StatusCreated)
}

func (h *ItineraryHandler) update(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	var req itineraryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	itinerary := domain.Itinerary{
		ID:       id,
		Title:    strings.TrimSpace(req.Title),
		Notes:    req.Notes,
		PlaceIDs: req.PlaceIDs,
	}
	return h.save(c, itinerary, http.StatusOK)
}

func (h *ItineraryHandler) save(c echo.Context, itinerary domain.Itinerary, status int) error {
	ctx := c.Request().Context()
	if err := h.prefs.SaveItinerary(ctx, itinerary); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not save itinerary"))
	}
	saved, err := h.prefs.Itinerary(ctx, itinerary.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read itinerary"))
	}
	return c.JSON(status, util.Data("itinerary", saved))
}

func (h *ItineraryHandler) remove(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	if err := h.prefs.DeleteItinerary(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrItineraryNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("itinerary not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete itinerary"))
	}
	return c.NoContent(http.StatusNoContent)
}
