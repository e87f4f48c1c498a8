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

type NotificationHandler struct {
	prefs         *service.PreferenceService
	notifications *service.NotificationService
}

func RegisterNotifications(e *echo.Echo, deviceToken string, prefs *service.PreferenceService, notifications *service.NotificationService) {
	handler := &NotificationHandler{prefs: prefs, notifications: notifications}

	g := e.Group("/api/v1/notifications", RequireDeviceToken(deviceToken))
	g.GET("/status", handler.status)
	g.POST("/authorization/request", handler.requestAuthorization)
	g.POST("/authorization/check", handler.checkAuthorization)
	g.GET("/pending", handler.pending)
	g.POST("/nearby", handler.scheduleNearby)
	g.POST("/trips/:id/reminder", handler.scheduleTripReminder)
	g.DELETE("", handler.clearAll)
	g.DELETE("/badge", handler.clearBadge)
}

func (h *NotificationHandler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, util.Data("status", h.notifications.State()))
}

func (h *NotificationHandler) requestAuthorization(c echo.Context) error {
	granted := h.notifications.RequestAuthorization(c.Request().Context())
	return c.JSON(http.StatusOK, util.Envelope{
		"granted": granted,
		"status":  h.notifications.State(),
	})
}

func (h *NotificationHandler) checkAuthorization(c echo.Context) error {
	h.notifications.CheckAuthorizationStatus(c.Request().Context())
	return c.NoContent(http.StatusAccepted)
}

func (h *NotificationHandler) pending(c echo.Context) error {
	pending, err := h.notifications.Pending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list pending notifications"))
	}
	return c.JSON(http.StatusOK, util.Data("pending", pending))
}

// scheduleNearby is called by the location layer when the user comes within
// range of a catalogued place.
func (h *NotificationHandler) scheduleNearby(c echo.Context) error {
	var req struct {
		Place          domain.Place `json:"place"`
		DistanceMeters float64      `json:"distance_meters"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.Place.ID == 0 || strings.TrimSpace(req.Place.Name) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("place id and name are required"))
	}
	if req.DistanceMeters < 0 {
		return c.JSON(http.StatusBadRequest, util.Error("distance_meters must not be negative"))
	}

	ctx := c.Request().Context()
	enabled, err := h.prefs.ProximityNotificationsEnabled(ctx)
	if err == nil && !enabled {
		return c.NoContent(http.StatusAccepted)
	}
	h.notifications.ScheduleNearbyPlace(ctx, req.Place, req.DistanceMeters)
	return c.NoContent(http.StatusAccepted)
}

func (h *NotificationHandler) scheduleTripReminder(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	ctx := c.Request().Context()
	trip, err := h.prefs.Trip(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("trip not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not read trip"))
	}
	h.notifications.ScheduleTripReminder(ctx, *trip)
	return c.NoContent(http.StatusAccepted)
}

func (h *NotificationHandler) clearAll(c echo.Context) error {
	h.notifications.ClearAll(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) clearBadge(c echo.Context) error {
	h.notifications.ClearBadge(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
