package system

import (
	"errors"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/reto21d/internal/api"
	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/keyring"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/metrics"
)

type ServeCmd struct {
	Addr       string        `help:"Listen address." env:"RETO21D_ADDR" default:":8021"`
	Token      string        `help:"Bearer token required on /api/v1. Read from the keyring when omitted." env:"RETO21D_API_TOKEN"`
	NoAuth     bool          `help:"Serve without a bearer token even if one is stored."`
	Origins    []string      `help:"Allowed CORS origins." default:"*"`
	RateLimit  float64       `help:"Requests per second allowed per client." default:"5"`
	RateBurst  int           `help:"Burst size of the per-client rate limit." default:"30"`
	Timeout    time.Duration `help:"Per-request timeout." default:"5s"`
	TrustProxy bool          `help:"Rate-limit by X-Forwarded-For. Only behind a trusted reverse proxy." env:"RETO21D_TRUST_PROXY"`
	Reminders  bool          `help:"Also run the daily reminder scheduler." default:"true" negatable:""`
}

// ResolveToken prefers the flag, then the keyring. A missing keyring entry
// leaves the API open.
func (c *ServeCmd) ResolveToken() string {
	if c.NoAuth {
		return ""
	}
	if c.Token != "" {
		return c.Token
	}
	token, err := keyring.Default().Get(constants.APITokenKeyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Could not read API token from keyring", "error", err)
		}
		return ""
	}
	return token
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if ctx.Metrics == nil {
		ctx.Metrics = metrics.New()
	}
	a, err := ctx.App()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Reminders {
		if err := a.Scheduler.ScheduleAllDailyReminders(); err != nil {
			logger.Warn("Failed to schedule reminders", "error", err)
		} else {
			a.Scheduler.Start()
		}
	}

	token := c.ResolveToken()
	if token == "" {
		logger.Warn("API is running without authentication")
	}
	srv := api.New(a, api.Config{
		Addr:           c.Addr,
		Token:          token,
		AllowedOrigins: c.Origins,
		RateLimit:      rate.Limit(c.RateLimit),
		RateBurst:      c.RateBurst,
		RequestTimeout: c.Timeout,
		TrustProxy:     c.TrustProxy,
	})
	return srv.Serve(runCtx)
}
