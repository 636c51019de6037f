package config

import (
	"time"
)

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxconv]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For header is honored.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

//revive:disable
// ExchangeRateApi configures the exchangerate-api.com v6 client.
// Requests go to {ApiUrl}/{ApiKey}/latest/{BASE}.
type ExchangeRateApi struct {
	ApiKey      string        `envconfig:"API_KEY" required:"true"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	// HealthTTL is how long the outcome of the latest fetch answers health checks.
	HealthTTL time.Duration `envconfig:"HEALTH_TTL" default:"1m"`
}

//revive:enable

// Converter holds the initial state of a new conversion form.
type Converter struct {
	DefaultSource string `envconfig:"DEFAULT_SOURCE" default:"USD"`
	DefaultTarget string `envconfig:"DEFAULT_TARGET" default:"EUR"`
	DefaultAmount string `envconfig:"DEFAULT_AMOUNT" default:"1"`
}

type Session struct {
	TTL           time.Duration `envconfig:"TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	Max           int           `envconfig:"MAX" default:"1000"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Redis configures the optional event stream. An empty URL selects the in-memory bus.
type Redis struct {
	URL    string `envconfig:"URL" default:""`
	Stream string `envconfig:"STREAM" default:"fxconv:events"`
	MaxLen int64  `envconfig:"MAX_LEN" default:"10000"`
}

type App struct {
	Env          string           `envconfig:"APP_ENV" default:"development"`
	Server       *Server          `envconfig:"SERVER"`
	Log          *Log             `envconfig:"LOG"`
	ExchangeRate *ExchangeRateApi `envconfig:"EXCHANGE_RATE"`
	Converter    *Converter       `envconfig:"CONVERTER"`
	Session      *Session         `envconfig:"SESSION"`
	RateLimit    *RateLimit       `envconfig:"RATE_LIMIT"`
	Redis        *Redis           `envconfig:"REDIS"`
}
