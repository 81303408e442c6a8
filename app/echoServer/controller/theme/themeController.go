package theme

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/model"
	threpo "github.com/oiueei/oiueei/repository/theme"

	"github.com/labstack/echo/v4"
)

// Controller serves the palette catalogue. Read-only; palettes are
// seeded out of band.
type Controller struct {
	Repo threpo.Repo
	Log  *slog.Logger
}

// List all palettes
// @Summary      List themes
// @Tags         themes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/themes [get]
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Repo.List(c.Request().Context())
	if err != nil {
		ct.Log.Error("theme list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Theme{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Detail of one palette
// @Summary      Get theme
// @Tags         themes
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Theme code"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/themes/{code} [get]
func (ct *Controller) Detail(c echo.Context) error {
	th, err := ct.Repo.ByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		ct.Log.Error("theme detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, th)
}
