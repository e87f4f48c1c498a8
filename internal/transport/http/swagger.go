package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/roamnest/roamnest-core/internal/util"
)

// RegisterSwagger serves the local API reference under /swagger. The spec is
// maintained by hand as YAML and converted to JSON on each request; the doc
// endpoint is cheap enough that caching is not worth the staleness risk
// during development.
func RegisterSwagger(e *echo.Echo) {
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(filepath.Join("docs", "swagger.yaml"))
		if err != nil {
			c.Logger().Errorf("load api spec: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load api spec"))
		}
		jsonSpec, err := yaml.YAMLToJSON(data)
		if err != nil {
			c.Logger().Errorf("convert api spec: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse api spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
