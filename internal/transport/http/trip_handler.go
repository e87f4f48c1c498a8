package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/util"
)

type TripHandler struct {
	prefs         *service.PreferenceService
	notifications *service.NotificationService
}

// RegisterTrips wires the saved-trip endpoints. Saving a trip also
// (re)schedules its reminder; deleting cancels it.
func RegisterTrips(e *echo.Echo, deviceToken string, prefs *service.PreferenceService, notifications *service.NotificationService) {
	handler := &TripHandler{prefs: prefs, notifications: notifications}

	g := e.Group("/api/v1/trips", RequireDeviceToken(deviceToken))
	g.GET("", handler.list)
	g.GET("/:id", handler.get)
	g.POST("", handler.create)
	g.PUT("/:id", handler.update)
	g.DELETE("/:id", handler.remove)
}

type tripRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Notes       *string `json:"notes"`
}

func (r tripRequest) toTrip(id uuid.UUID) (domain.Trip, error) {
	destination := strings.TrimSpace(r.Destination)
	if destination == "" {
		return domain.Trip{}, errors.New("destination is required")
	}
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return domain.Trip{}, errors.New("start_date must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return domain.Trip{}, errors.New("end_date must be RFC 3339")
	}
	if end.Before(start) {
		return domain.Trip{}, errors.New("end_date must not precede start_date")
	}
	return domain.Trip{
		ID:          id,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
		Notes:       r.Notes,
	}, nil
}

func (h *TripHandler) list(c echo.Context) error {
	trips, err := h.prefs.SavedTrips(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read trips"))
	}
	return c.JSON(http.StatusOK, util.Data("trips", trips))
}

func (h *TripHandler) get(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	trip, err := h.prefs.Trip(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("trip not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not read trip"))
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) create(c echo.Context) error {
	var req tripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	trip, err := req.toTrip(uuid.New())
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	return h.save(c, trip, http.StatusCreated)
}

func (h *TripHandler) update(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	var req tripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	trip, err := req.toTrip(id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	return h.save(c, trip, http.StatusOK)
}

func (h *TripHandler) save(c echo.Context, trip domain.Trip, status int) error {
	ctx := c.Request().Context()
	if err := h.prefs.SaveTrip(ctx, trip); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not save trip"))
	}
	if h.notifications != nil {
		h.notifications.ScheduleTripReminder(ctx, trip)
	}

	saved, err := h.prefs.Trip(ctx, trip.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read trip"))
	}
	return c.JSON(status, util.Data("trip", saved))
}

func (h *TripHandler) remove(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	ctx := c.Request().Context()
	if err := h.prefs.DeleteTrip(ctx, id); err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("trip not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete trip"))
	}
	if h.notifications != nil {
		h.notifications.CancelTripReminder(ctx, domain.Trip{ID: id})
	}
	return c.NoContent(http.StatusNoContent)
}
