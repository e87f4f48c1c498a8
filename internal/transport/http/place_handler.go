package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/backend"
	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/util"
)

type PlaceHandler struct {
	backend *backend.Client
}

// RegisterPlaces proxies catalogue lookups to the hosted backend so the UI
// only ever talks to the local API.
func RegisterPlaces(e *echo.Echo, deviceToken string, client *backend.Client) {
	handler := &PlaceHandler{backend: client}

	g := e.Group("/api/v1/places", RequireDeviceToken(deviceToken))
	g.GET("/search", handler.search)
	g.GET("/nearby", handler.nearby)
	g.GET("/:place_id", handler.get)
}

func (h *PlaceHandler) search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, util.Error("query is required"))
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, util.Error("limit must be a non-negative integer"))
		}
		limit = v
	}

	places, err := h.backend.SearchPlaces(c.Request().Context(), query, limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, util.Error("backend search failed"))
	}
	return c.JSON(http.StatusOK, util.Data("places", places))
}

func (h *PlaceHandler) nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("lat must be a number"))
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("lon must be a number"))
	}
	radius, err := strconv.ParseFloat(c.QueryParam("radius"), 64)
	if err != nil || radius <= 0 {
		return c.JSON(http.StatusBadRequest, util.Error("radius must be a positive number"))
	}

	places, err := h.backend.NearbyPlaces(c.Request().Context(), lat, lon, radius)
	if err != nil {
		return c.JSON(http.StatusBadGateway, util.Error("backend lookup failed"))
	}
	return c.JSON(http.StatusOK, util.Data("places", places))
}

func (h *PlaceHandler) get(c echo.Context) error {
	raw := strings.TrimSpace(c.Param("place_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}

	place, err := h.backend.Place(c.Request().Context(), domain.PlaceID(id))
	if err != nil {
		return c.JSON(http.StatusBadGateway, util.Error("backend lookup failed"))
	}
	return c.JSON(http.StatusOK, util.Data("place", place))
}
