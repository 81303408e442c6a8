package echoServer

import (
	"net/http"

	"github.com/oiueei/oiueei/app/echoServer/controller/auth"
	"github.com/oiueei/oiueei/app/echoServer/controller/booking"
	"github.com/oiueei/oiueei/app/echoServer/controller/collection"
	"github.com/oiueei/oiueei/app/echoServer/controller/faq"
	"github.com/oiueei/oiueei/app/echoServer/controller/theme"
	"github.com/oiueei/oiueei/app/echoServer/controller/thing"
	"github.com/oiueei/oiueei/app/echoServer/controller/user"
	jwtutil "github.com/oiueei/oiueei/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth       *auth.Controller
	Thing      *thing.Controller
	Collection *collection.Controller
	Booking    *booking.Controller
	FAQ        *faq.Controller
	Theme      *theme.Controller
	User       *user.Controller
	JWTSecret  string
}

func Register(e *echo.Echo, c C) {
	// Public: the RSVP code in the URL is the whole credential.
	pub := e.Group("/v1")
	pub.POST("/auth/request-link", c.Auth.RequestLink)
	pub.GET("/rsvp/:code", c.Auth.VerifyRSVP)
	pub.GET("/auth/verify/:code", c.Auth.VerifyRSVP)

	// Session-scoped
	sess := e.Group("/v1")
	sess.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	sess.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := jwtutil.ParseAuth(ctx.Request().Header.Get(echo.HeaderAuthorization), c.JWTSecret)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if sub, _ := claims["sub"].(string); sub == "" {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			return next(ctx)
		}
	})

	sess.GET("/auth/me", c.Auth.Me)

	// Users
	sess.GET("/users/:code", c.User.Detail)
	sess.PUT("/users/:code", c.User.Update)

	// Things
	sess.GET("/things", c.Thing.List)
	sess.POST("/things", c.Thing.Create)
	sess.GET("/things/:code", c.Thing.Detail)
	sess.PUT("/things/:code", c.Thing.Update)
	sess.DELETE("/things/:code", c.Thing.Delete)
	sess.GET("/invited-things", c.Thing.Invited)
	sess.POST("/things/:code/reserve", c.Thing.Reserve)
	sess.POST("/things/:code/release", c.Thing.Release)

	// Booking
	sess.POST("/things/:code/request", c.Booking.Request)
	sess.GET("/things/:code/calendar", c.Booking.Calendar)
	sess.GET("/my-bookings", c.Booking.MyBookings)
	sess.GET("/owner-bookings", c.Booking.OwnerBookings)

	// Collections
	sess.GET("/collections", c.Collection.List)
	sess.POST("/collections", c.Collection.Create)
	sess.GET("/collections/:code", c.Collection.Detail)
	sess.PUT("/collections/:code", c.Collection.Update)
	sess.DELETE("/collections/:code", c.Collection.Delete)
	sess.GET("/invited-collections", c.Collection.Invited)
	sess.POST("/collections/:code/invite", c.Collection.Invite)
	sess.POST("/collections/:code/things/:thing", c.Collection.AddThing)
	sess.DELETE("/collections/:code/things/:thing", c.Collection.RemoveThing)

	// FAQ
	sess.POST("/things/:code/faq", c.FAQ.Ask)
	sess.GET("/things/:code/faq", c.FAQ.ListForThing)
	sess.GET("/faq/:code", c.FAQ.Detail)
	sess.POST("/faq/:code/answer", c.FAQ.Answer)
	sess.POST("/faq/:code/hide", c.FAQ.Hide)
	sess.POST("/faq/:code/show", c.FAQ.Show)

	// Themes
	sess.GET("/themes", c.Theme.List)
	sess.GET("/themes/:code", c.Theme.Detail)
}
