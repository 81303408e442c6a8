package collection

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	"github.com/oiueei/oiueei/model"
	cs "github.com/oiueei/oiueei/service/collection"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List own collections
// @Summary      List my collections
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/collections [get]
func (ct *Controller) List(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.ListOwn(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("collection list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Collection{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Invited lists collections shared with the caller
// @Summary      List invited collections
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/invited-collections [get]
func (ct *Controller) Invited(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.ListInvited(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("invited collections", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Collection{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Create a collection
// @Summary      Create collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateCollectionReq  true  "Collection"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /v1/collections [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateCollectionReq
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

	col, err := ct.Svc.Create(c.Request().Context(), uid, cs.CreateCollection{
		Headline:    req.Headline,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hero:        req.Hero,
		ThemeCode:   req.ThemeCode,
	})
	if err != nil {
		if cs.Code(err) == cs.ErrValidation {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
		}
		ct.Log.Error("collection create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, col)
}

// Detail of one collection
// @Summary      Get collection
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Collection code"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/collections/{code} [get]
func (ct *Controller) Detail(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	col, err := ct.Svc.Get(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		return ct.mapErr(c, err, "collection detail")
	}
	return c.JSON(http.StatusOK, col)
}

// Update a collection (owner only)
// @Summary      Update collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string               true  "Collection code"
// @Param        payload  body  UpdateCollectionReq  true  "Fields"
// @Success      200  {object}  map[string]any
// @Router       /v1/collections/{code} [put]
func (ct *Controller) Update(c echo.Context) error {
	var req UpdateCollectionReq
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

	in := cs.UpdateCollection{
		Headline:    req.Headline,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hero:        req.Hero,
		ThemeCode:   req.ThemeCode,
	}
	if req.Status != nil {
		st := model.CollectionStatus(*req.Status)
		in.Status = &st
	}

	col, err := ct.Svc.Update(c.Request().Context(), c.Param("code"), uid, in)
	if err != nil {
		return ct.mapErr(c, err, "collection update")
	}
	return c.JSON(http.StatusOK, col)
}

// Delete a collection (owner only)
// @Summary      Delete collection
// @Tags         collections
// @Security     BearerAuth
// @Param        code  path  string  true  "Collection code"
// @Success      200  {object}  map[string]any
// @Router       /v1/collections/{code} [delete]
func (ct *Controller) Delete(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.Delete(c.Request().Context(), c.Param("code"), uid); err != nil {
		return ct.mapErr(c, err, "collection delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// Invite a user by email
// @Summary      Invite to collection
// @Description  Emails a one-time invitation link. Creates the account if the email is new.
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string     true  "Collection code"
// @Param        payload  body  InviteReq  true  "Invitee email"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/collections/{code}/invite [post]
func (ct *Controller) Invite(c echo.Context) error {
	var req InviteReq
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

	if err := ct.Svc.Invite(c.Request().Context(), c.Param("code"), uid, req.Email); err != nil {
		return ct.mapErr(c, err, "collection invite")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation sent", "email": req.Email})
}

// AddThing lists one of the caller's things in the collection
// @Summary      Add thing to collection
// @Tags         collections
// @Security     BearerAuth
// @Param        code   path  string  true  "Collection code"
// @Param        thing  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Router       /v1/collections/{code}/things/{thing} [post]
func (ct *Controller) AddThing(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.AddThing(c.Request().Context(), c.Param("code"), uid, c.Param("thing")); err != nil {
		return ct.mapErr(c, err, "collection add thing")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "added"})
}

// RemoveThing unlists a thing from the collection
// @Summary      Remove thing from collection
// @Tags         collections
// @Security     BearerAuth
// @Param        code   path  string  true  "Collection code"
// @Param        thing  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Router       /v1/collections/{code}/things/{thing} [delete]
func (ct *Controller) RemoveThing(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.RemoveThing(c.Request().Context(), c.Param("code"), uid, c.Param("thing")); err != nil {
		return ct.mapErr(c, err, "collection remove thing")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

func (ct *Controller) mapErr(c echo.Context, err error, op string) error {
	switch cs.Code(err) {
	case cs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case cs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case cs.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	default:
		ct.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
