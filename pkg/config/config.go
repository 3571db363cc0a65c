package config

import (
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[corebank]"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Bank configures the registry itself.
type Bank struct {
	Name        string  `envconfig:"NAME" default:"Community Trust Bank"`
	SavingsRate float64 `envconfig:"SAVINGS_RATE" default:"3.5"`
}

// Jobs holds the cron expressions for the batch sweeps. Both default to the
// first of the month during the idle window; the fee sweep carries no
// double-charge protection of its own, so the schedule is the only guard.
type Jobs struct {
	Enabled          bool   `envconfig:"ENABLED" default:"true"`
	InterestSchedule string `envconfig:"INTEREST_SCHEDULE" default:"0 2 1 * *"`
	FeeSchedule      string `envconfig:"FEE_SCHEDULE" default:"0 3 1 * *"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	Jwt       *Jwt       `envconfig:"JWT"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Bank      *Bank      `envconfig:"BANK"`
	Jobs      *Jobs      `envconfig:"JOBS"`
}
