package auth

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	"github.com/oiueei/oiueei/model"
	authsvc "github.com/oiueei/oiueei/service/auth"
	bookingsvc "github.com/oiueei/oiueei/service/booking"
	rsvpsvc "github.com/oiueei/oiueei/service/rsvp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// RequestLink sends a magic sign-in link
// @Summary      Request magic link
// @Description  Emails a one-time sign-in link. Invite-only: unknown addresses are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RequestLinkReq  true  "Email"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "no account for this email"
// @Router       /v1/auth/request-link [post]
func (ct *Controller) RequestLink(c echo.Context) error {
	var req model.RequestLinkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	if err := ct.Svc.RequestLink(c.Request().Context(), req.Email); err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{
				"message": "no account found, ask someone to invite you",
			})
		}
		ct.Log.Error("request link", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "magic link sent", "email": req.Email})
}

// VerifyRSVP resolves any emailed RSVP token
// @Summary      Resolve RSVP action
// @Description  Unified handler for magic-link login, collection invites and booking accept/reject.
// @Tags         auth
// @Produce      json
// @Param        code  path  string  true  "RSVP code"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "booking expired or already processed"
// @Failure      401  {object}  map[string]any "invalid or expired link"
// @Failure      404  {object}  map[string]any "booking or thing missing"
// @Router       /v1/rsvp/{code} [get]
func (ct *Controller) VerifyRSVP(c echo.Context) error {
	res, err := ct.Svc.VerifyRSVP(c.Request().Context(), c.Param("code"))
	if err != nil {
		return ct.mapVerifyErr(c, err)
	}

	out := echo.Map{"action": res.Action}
	if res.Booking != nil {
		b := res.Booking
		out["message"] = b.Message
		out["thing_headline"] = b.ThingHeadline
		if b.StartDate != nil {
			out["start_date"] = b.StartDate.Format("2006-01-02")
		}
		if b.EndDate != nil {
			out["end_date"] = b.EndDate.Format("2006-01-02")
		}
		if b.DeliveryDate != nil {
			out["delivery_date"] = b.DeliveryDate.Format("2006-01-02")
		}
		if b.Quantity != nil {
			out["quantity"] = *b.Quantity
		}
		return c.JSON(http.StatusOK, out)
	}

	out["token"] = res.Token
	out["user"] = res.User
	if res.InvitedCollection != "" {
		out["invited_collection"] = res.InvitedCollection
	}
	return c.JSON(http.StatusOK, out)
}

func (ct *Controller) mapVerifyErr(c echo.Context, err error) error {
	switch {
	case rsvpsvc.Code(err) == rsvpsvc.ErrUnauthorized,
		authsvc.Code(err) == authsvc.ErrUnauthorized:
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired link"})
	case bookingsvc.Code(err) == bookingsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case bookingsvc.Code(err) == bookingsvc.ErrInvalidRequest:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	default:
		ct.Log.Error("rsvp verify", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/auth/me [get]
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserCodeFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := ct.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		ct.Log.Error("me", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
