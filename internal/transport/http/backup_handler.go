package http

import (
	"io"
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/util"
)

const yamlContentType = "application/x-yaml"

// maxBackupBytes caps the accepted restore document.
const maxBackupBytes = 4 << 20

type BackupHandler struct {
	prefs *service.PreferenceService
}

// RegisterBackup exposes the whole preference set as one YAML document for
// device backup and restore.
func RegisterBackup(e *echo.Echo, deviceToken string, prefs *service.PreferenceService) {
	handler := &BackupHandler{prefs: prefs}

	g := e.Group("/api/v1/preferences", RequireDeviceToken(deviceToken))
	g.GET("/export", handler.export)
	g.PUT("/export", handler.restore)
}

func (h *BackupHandler) export(c echo.Context) error {
	export, err := h.prefs.Export(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not export preferences"))
	}
	doc, err := yaml.Marshal(export)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not encode preferences"))
	}
	return c.Blob(http.StatusOK, yamlContentType, doc)
}

func (h *BackupHandler) restore(c echo.Context) error {
	doc, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBackupBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not read request body"))
	}

	var export service.PreferenceExport
	if err := yaml.Unmarshal(doc, &export); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid backup document"))
	}
	if err := h.prefs.Import(c.Request().Context(), export); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not restore preferences"))
	}
	return c.NoContent(http.StatusNoContent)
}
