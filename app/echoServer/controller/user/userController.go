package user

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	us "github.com/oiueei/oiueei/service/user"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc us.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Detail returns a user's profile. Own profile comes back in full;
// anyone else sees the public projection.
// @Summary      Get user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "User code"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{code} [get]
func (ct *Controller) Detail(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	target := c.Param("code")

	u, err := ct.Svc.Get(c.Request().Context(), target, uid)
	if err != nil {
		return ct.mapErr(c, err, "user detail")
	}
	if target == uid {
		return c.JSON(http.StatusOK, u)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Update own profile
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string         true  "User code (must be the caller's)"
// @Param        payload  body  UpdateUserReq  true  "Fields"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/users/{code} [put]
func (ct *Controller) Update(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if c.Param("code") != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "cannot update another user's profile"})
	}

	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, err := ct.Svc.Update(c.Request().Context(), uid, us.UpdateProfile{
		Name:      req.Name,
		Headline:  req.Headline,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		return ct.mapErr(c, err, "user update")
	}
	return c.JSON(http.StatusOK, u)
}

func (ct *Controller) mapErr(c echo.Context, err error, op string) error {
	switch us.Code(err) {
	case us.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case us.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		ct.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
