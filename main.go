// Package main wishlist API.
//
// @title           OIUEEI API
// @version         1.0
// @description     Wishlist sharing service (things, collections, bookings, RSVP links).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/oiueei/oiueei/app/echoServer"
	authctrl "github.com/oiueei/oiueei/app/echoServer/controller/auth"
	bookingctrl "github.com/oiueei/oiueei/app/echoServer/controller/booking"
	collectionctrl "github.com/oiueei/oiueei/app/echoServer/controller/collection"
	faqctrl "github.com/oiueei/oiueei/app/echoServer/controller/faq"
	themectrl "github.com/oiueei/oiueei/app/echoServer/controller/theme"
	thingctrl "github.com/oiueei/oiueei/app/echoServer/controller/thing"
	userctrl "github.com/oiueei/oiueei/app/echoServer/controller/user"
	"github.com/oiueei/oiueei/app/echoServer/validation"
	"github.com/oiueei/oiueei/config"
	"github.com/oiueei/oiueei/model"
	bookingrepo "github.com/oiueei/oiueei/repository/booking"
	collectionrepo "github.com/oiueei/oiueei/repository/collection"
	faqrepo "github.com/oiueei/oiueei/repository/faq"
	"github.com/oiueei/oiueei/repository/mailer"
	rsvprepo "github.com/oiueei/oiueei/repository/rsvp"
	themerepo "github.com/oiueei/oiueei/repository/theme"
	thingrepo "github.com/oiueei/oiueei/repository/thing"
	userrepo "github.com/oiueei/oiueei/repository/user"
	authsvc "github.com/oiueei/oiueei/service/auth"
	bookingsvc "github.com/oiueei/oiueei/service/booking"
	collectionsvc "github.com/oiueei/oiueei/service/collection"
	faqsvc "github.com/oiueei/oiueei/service/faq"
	rsvpsvc "github.com/oiueei/oiueei/service/rsvp"
	thingsvc "github.com/oiueei/oiueei/service/thing"
	usersvc "github.com/oiueei/oiueei/service/user"
	"github.com/oiueei/oiueei/util/database"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	rr := rsvprepo.New(db)
	tr := thingrepo.New(db)
	br := bookingrepo.New(db)
	cr := collectionrepo.New(db)
	thr := themerepo.New(db)
	fr := faqrepo.New(db)
	mail := mailer.NewHTTP(cfg.MailAPIKey, cfg.MailAPIBase, cfg.MailFrom)

	// the configured default palette always exists
	if err := thr.EnsureDefault(ctx, model.Theme{
		Code: cfg.DefaultThemeCode,
		Name: "Barcelona",
		C010: "FFFFFF", C020: "F5F5F5", C040: "E0E0E0", C060: "BDBDBD",
		C080: "9E9E9E", C100: "757575", C200: "616161", C400: "424242",
		C600: "212121", C800: "000000",
	}); err != nil {
		log.Error("theme seed failed", "err", err)
		os.Exit(1)
	}

	// services
	bookingWindow := time.Duration(cfg.BookingExpiryHours) * time.Hour
	rs := rsvpsvc.New(rr, time.Duration(cfg.MagicLinkExpiryHours)*time.Hour)
	bks := bookingsvc.New(db, br, tr, ur, rs, mail, log, bookingWindow, cfg.RSVPBaseURL)
	ths := thingsvc.New(tr, cr)
	cls := collectionsvc.New(cr, ur, tr, rs, mail, log, cfg.RSVPBaseURL, cfg.DefaultThemeCode)
	fqs := faqsvc.New(fr, tr, ur, mail, log)
	uss := usersvc.New(ur)
	as := authsvc.New(ur, rs, cls, bks, mail, log, cfg.JWTSecret, cfg.SessionTTLHours, cfg.MagicLinkBaseURL)

	// stale-booking sweep
	sweep := bookingsvc.NewSweeper(br, bookingWindow)
	go func() {
		tick := time.NewTicker(time.Duration(cfg.SweepIntervalMinutes) * time.Minute)
		defer tick.Stop()
		for range tick.C {
			n, err := sweep.ExpireStalePending(ctx)
			if err != nil {
				log.Error("booking sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("bookings expired", "count", n)
			}
		}
	}()

	// controllers
	v := validation.NewValidate()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	thingC := &thingctrl.Controller{Svc: ths, V: v, Log: log}
	collectionC := &collectionctrl.Controller{Svc: cls, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bks, V: v, Log: log}
	faqC := &faqctrl.Controller{Svc: fqs, V: v, Log: log}
	themeC := &themectrl.Controller{Repo: thr, Log: log}
	userC := &userctrl.Controller{Svc: uss, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:       authC,
		Thing:      thingC,
		Collection: collectionC,
		Booking:    bookingC,
		FAQ:        faqC,
		Theme:      themeC,
		User:       userC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
