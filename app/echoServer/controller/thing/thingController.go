package thing

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	"github.com/oiueei/oiueei/model"
	ts "github.com/oiueei/oiueei/service/thing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ts.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List own things
// @Summary      List my things
// @Tags         things
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/things [get]
func (ct *Controller) List(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.ListOwn(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("thing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Thing{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Invited lists things shared with the caller
// @Summary      List invited things
// @Tags         things
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/invited-things [get]
func (ct *Controller) Invited(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.ListInvited(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("invited things", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Thing{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Create a thing
// @Summary      Create thing
// @Tags         things
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateThingReq  true  "Thing"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /v1/things [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateThingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := jwtx.UserCodeFromContext(c)

	t, err := ct.Svc.Create(c.Request().Context(), uid, ts.CreateThing{
		Type:           model.ThingType(req.Type),
		Headline:       req.Headline,
		Description:    req.Description,
		Thumbnail:      req.Thumbnail,
		Fee:            req.Fee,
		CollectionCode: req.CollectionCode,
	})
	if err != nil {
		if ts.Code(err) == ts.ErrValidation {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
		}
		ct.Log.Error("thing create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Detail of one thing
// @Summary      Get thing
// @Tags         things
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/things/{code} [get]
func (ct *Controller) Detail(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	t, err := ct.Svc.Get(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		return ct.mapErr(c, err, "thing detail")
	}
	return c.JSON(http.StatusOK, t)
}

// Update a thing (owner only)
// @Summary      Update thing
// @Tags         things
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string          true  "Thing code"
// @Param        payload  body  UpdateThingReq  true  "Fields"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/things/{code} [put]
func (ct *Controller) Update(c echo.Context) error {
	var req UpdateThingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := jwtx.UserCodeFromContext(c)

	in := ts.UpdateThing{
		Headline:    req.Headline,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Fee:         req.Fee,
		Available:   req.Available,
	}
	if req.Status != nil {
		st := model.ThingStatus(*req.Status)
		in.Status = &st
	}

	t, err := ct.Svc.Update(c.Request().Context(), c.Param("code"), uid, in)
	if err != nil {
		return ct.mapErr(c, err, "thing update")
	}
	return c.JSON(http.StatusOK, t)
}

// Delete a thing (owner only)
// @Summary      Delete thing
// @Tags         things
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/things/{code} [delete]
func (ct *Controller) Delete(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.Delete(c.Request().Context(), c.Param("code"), uid); err != nil {
		return ct.mapErr(c, err, "thing delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// Reserve adds the caller to the thing's deal list
// @Summary      Reserve thing
// @Tags         things
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Router       /v1/things/{code}/reserve [post]
func (ct *Controller) Reserve(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.Reserve(c.Request().Context(), c.Param("code"), uid); err != nil {
		return ct.mapErr(c, err, "thing reserve")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reserved"})
}

// Release removes the caller from the thing's deal list
// @Summary      Release thing
// @Tags         things
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Router       /v1/things/{code}/release [post]
func (ct *Controller) Release(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.Release(c.Request().Context(), c.Param("code"), uid); err != nil {
		return ct.mapErr(c, err, "thing release")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "released"})
}

func (ct *Controller) mapErr(c echo.Context, err error, op string) error {
	switch ts.Code(err) {
	case ts.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "thing not found"})
	case ts.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case ts.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	default:
		ct.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
