package config

import (
	"log/slog"
	"os"
	"strconv"
)

func Load() App {
	cfg := App{
		Port:             getenv("APP_PORT", "8080"),
		DatabaseURL:      must("DATABASE_URL"),
		JWTSecret:        getenv("JWT_SECRET", "local_dev_secret"),
		Env:              getenv("APP_ENV", "dev"),
		MailAPIKey:       os.Getenv("MAIL_API_KEY"),
		MailAPIBase:      getenv("MAIL_API_BASE", "https://api.mailchannels.net/tx/v1"),
		MailFrom:         getenv("MAIL_FROM", "no-reply@oiueei.app"),
		RSVPBaseURL:      getenv("RSVP_BASE_URL", "http://localhost:3000/rsvp"),
		MagicLinkBaseURL: getenv("MAGIC_LINK_BASE_URL", "http://localhost:3000/magic-link"),

		BookingExpiryHours:   getint("BOOKING_EXPIRY_HOURS", 72),
		MagicLinkExpiryHours: getint("MAGIC_LINK_EXPIRY_HOURS", 24),
		SessionTTLHours:      getint("SESSION_TTL_HOURS", 24),
		SweepIntervalMinutes: getint("SWEEP_INTERVAL_MINUTES", 60),

		DefaultThemeCode: getenv("DEFAULT_THEME_CODE", "BRCLON"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad int env, using default", "key", k, "value", v)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
