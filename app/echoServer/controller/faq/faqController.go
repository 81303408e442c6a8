package faq

import (
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/jwtx"
	"github.com/oiueei/oiueei/model"
	fs "github.com/oiueei/oiueei/service/faq"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc fs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Ask posts a question about a thing
// @Summary      Ask about a thing
// @Tags         faq
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string  true  "Thing code"
// @Param        payload  body  AskReq  true  "Question"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/things/{code}/faq [post]
func (ct *Controller) Ask(c echo.Context) error {
	var req AskReq
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

	f, err := ct.Svc.Ask(c.Request().Context(), c.Param("code"), uid, req.Question)
	if err != nil {
		return ct.mapErr(c, err, "faq ask")
	}
	return c.JSON(http.StatusCreated, f)
}

// ListForThing returns the thing's Q&A list
// @Summary      List thing FAQ
// @Tags         faq
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Thing code"
// @Success      200  {object}  map[string]any
// @Router       /v1/things/{code}/faq [get]
func (ct *Controller) ListForThing(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	rows, err := ct.Svc.ListForThing(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		return ct.mapErr(c, err, "faq list")
	}
	if rows == nil {
		rows = []model.FAQ{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Detail returns one Q&A entry
// @Summary      Get FAQ entry
// @Tags         faq
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "FAQ code"
// @Success      200  {object}  map[string]any
// @Router       /v1/faq/{code} [get]
func (ct *Controller) Detail(c echo.Context) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	f, err := ct.Svc.Get(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		return ct.mapErr(c, err, "faq detail")
	}
	return c.JSON(http.StatusOK, f)
}

// Answer stores the owner's answer and emails the questioner
// @Summary      Answer a question
// @Tags         faq
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path  string     true  "FAQ code"
// @Param        payload  body  AnswerReq  true  "Answer"
// @Success      200  {object}  map[string]any
// @Router       /v1/faq/{code}/answer [post]
func (ct *Controller) Answer(c echo.Context) error {
	var req AnswerReq
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

	f, err := ct.Svc.Answer(c.Request().Context(), c.Param("code"), uid, req.Answer)
	if err != nil {
		return ct.mapErr(c, err, "faq answer")
	}
	return c.JSON(http.StatusOK, f)
}

// Hide removes the entry from the public list (owner only)
// @Summary      Hide FAQ entry
// @Tags         faq
// @Security     BearerAuth
// @Param        code  path  string  true  "FAQ code"
// @Success      200  {object}  map[string]any
// @Router       /v1/faq/{code}/hide [post]
func (ct *Controller) Hide(c echo.Context) error {
	return ct.setVisible(c, false)
}

// Show puts the entry back on the public list (owner only)
// @Summary      Show FAQ entry
// @Tags         faq
// @Security     BearerAuth
// @Param        code  path  string  true  "FAQ code"
// @Success      200  {object}  map[string]any
// @Router       /v1/faq/{code}/show [post]
func (ct *Controller) Show(c echo.Context) error {
	return ct.setVisible(c, true)
}

func (ct *Controller) setVisible(c echo.Context, visible bool) error {
	uid, _ := jwtx.UserCodeFromContext(c)
	if err := ct.Svc.SetVisible(c.Request().Context(), c.Param("code"), uid, visible); err != nil {
		return ct.mapErr(c, err, "faq visibility")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

func (ct *Controller) mapErr(c echo.Context, err error, op string) error {
	switch fs.Code(err) {
	case fs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case fs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case fs.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	default:
		ct.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
