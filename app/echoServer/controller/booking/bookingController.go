package booking

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	"github.com/oiueei/oiueei/model"
	bs "github.com/oiueei/oiueei/service/booking"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

const dateLayout = "2006-01-02"

// Request creates a booking request for a thing
// @Summary      Request a thing
// @Description  Creates a reservation, order or date-based booking depending on the thing type.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string           true  "Thing code"
// @Param        payload  body  ThingRequestReq  true  "Type-specific fields"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "own thing / not active / bad payload"
// @Failure      403  {object}  map[string]any "not invited"
// @Failure      409  {object}  map[string]any "dates overlap"
// @Router       /v1/things/{code}/request [post]
func (ct *Controller) Request(c echo.Context) error {
	var req ThingRequestReq
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
	email, _ := jwtx.EmailFromContext(c)

	b, err := ct.Svc.CreateRequest(c.Request().Context(), c.Param("code"),
		bs.Requester{Code: uid, Email: email},
		bs.CreateRequest{
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			DeliveryDate: req.DeliveryDate,
			Quantity:     req.Quantity,
		})
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
		case bs.ErrValidation, bs.ErrInvalidRequest:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case bs.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
		default:
			ct.Log.Error("booking request", "thing", c.Param("code"), "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	out := echo.Map{
		"message":      "booking request sent",
		"booking_code": b.Code,
	}
	if b.StartDate != nil {
		out["start_date"] = b.StartDate.Format(dateLayout)
		out["end_date"] = b.EndDate.Format(dateLayout)
	}
	if b.DeliveryDate != nil {
		out["delivery_date"] = b.DeliveryDate.Format(dateLayout)
		out["quantity"] = *b.Quantity
	}
	return c.JSON(http.StatusOK, out)
}

// Calendar lists blocked periods for a thing
// @Summary      Thing calendar
// @Description  PENDING and ACCEPTED bookings ordered by start date. Owners see requester details, guests only dates and status.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {array}   OwnerCalendarEntry
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/things/{code}/calendar [get]
func (ct *Controller) Calendar(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)

	periods, ownerView, err := ct.Svc.BlockedPeriods(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
		default:
			ct.Log.Error("calendar", "thing", c.Param("code"), "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	if ownerView {
		out := make([]OwnerCalendarEntry, 0, len(periods))
		for _, b := range periods {
			e := OwnerCalendarEntry{
				BookingCode:    b.Code,
				RequesterCode:  b.RequesterCode,
				RequesterEmail: b.RequesterEmail,
				Quantity:       b.Quantity,
				Status:         string(b.Status),
			}
			if b.StartDate != nil {
				e.StartDate = b.StartDate.Format(dateLayout)
			}
			if b.EndDate != nil {
				e.EndDate = b.EndDate.Format(dateLayout)
			}
			if b.DeliveryDate != nil {
				e.DeliveryDate = b.DeliveryDate.Format(dateLayout)
			}
			out = append(out, e)
		}
		return c.JSON(http.StatusOK, out)
	}

	out := make([]CalendarEntry, 0, len(periods))
	for _, b := range periods {
		e := CalendarEntry{Status: string(b.Status)}
		if b.StartDate != nil {
			e.StartDate = b.StartDate.Format(dateLayout)
		}
		if b.EndDate != nil {
			e.EndDate = b.EndDate.Format(dateLayout)
		}
		out = append(out, e)
	}
	return c.JSON(http.StatusOK, out)
}

// MyBookings lists bookings made by the caller
// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/my-bookings [get]
func (ct *Controller) MyBookings(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.MyBookings(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("my bookings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": emptyIfNil(rows)})
}

// OwnerBookings lists bookings against the caller's things
// @Summary      Bookings on my things
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/owner-bookings [get]
func (ct *Controller) OwnerBookings(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.OwnerBookings(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("owner bookings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": emptyIfNil(rows)})
}

func emptyIfNil(rows []model.Booking) []model.Booking {
	if rows == nil {
		return []model.Booking{}
	}
	return rows
}
