package config

type App struct {
	Port             string `env:"APP_PORT" default:"8080"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	JWTSecret        string `env:"JWT_SECRET,required"`
	Env              string `env:"APP_ENV" default:"dev"`
	MailAPIKey       string `env:"MAIL_API_KEY"`
	MailAPIBase      string `env:"MAIL_API_BASE" default:"https://api.mailchannels.net/tx/v1"`
	MailFrom         string `env:"MAIL_FROM" default:"no-reply@oiueei.app"`
	RSVPBaseURL      string `env:"RSVP_BASE_URL" default:"http://localhost:3000/rsvp"`
	MagicLinkBaseURL string `env:"MAGIC_LINK_BASE_URL" default:"http://localhost:3000/magic-link"`

	// Expiry knobs are independent: a booking's own staleness never
	// depends on the RSVP token's window.
	BookingExpiryHours   int `env:"BOOKING_EXPIRY_HOURS" default:"72"`
	MagicLinkExpiryHours int `env:"MAGIC_LINK_EXPIRY_HOURS" default:"24"`
	SessionTTLHours      int `env:"SESSION_TTL_HOURS" default:"24"`
	SweepIntervalMinutes int `env:"SWEEP_INTERVAL_MINUTES" default:"60"`

	DefaultThemeCode string `env:"DEFAULT_THEME_CODE" default:"BRCLON"`
}
