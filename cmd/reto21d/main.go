package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/cli/account"
	"github.com/julianstephens/reto21d/internal/cli/challenges"
	"github.com/julianstephens/reto21d/internal/cli/habits"
	"github.com/julianstephens/reto21d/internal/cli/rewards"
	"github.com/julianstephens/reto21d/internal/cli/system"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/keyring"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/storage/postgres"
	"github.com/julianstephens/reto21d/internal/storage/sqlite"
	"github.com/julianstephens/reto21d/internal/utils"
)

var CLI struct {
	Version      kong.VersionFlag
	DB           string        `name:"config" help:"SQLite database path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use .pgpass, PGPASSWORD or the OS keyring." env:"RETO21D_CONFIG" default:"${config}"`
	Debug        bool          `help:"Log debug output to stderr." env:"RETO21D_DEBUG"`
	Timezone     string        `help:"IANA timezone used for day boundaries." env:"RETO21D_TIMEZONE" default:"Local"`
	Latency      time.Duration `help:"Simulated latency of every store operation." env:"RETO21D_LATENCY" default:"0s"`
	PersistState bool          `help:"Save state between runs; --no-persist-state starts from the seed data every time." env:"RETO21D_PERSIST_STATE" default:"true" negatable:""`

	Init         system.InitCmd            `cmd:"" help:"Initialize reto21d storage."`
	Tui          system.TuiCmd             `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit        habits.HabitCmd           `cmd:"" help:"Manage and track habits."`
	Challenge    challenges.ChallengeCmd   `cmd:"" help:"Manage the 21-day challenge."`
	Progress     challenges.ProgressCmd    `cmd:"" help:"Show challenge progress."`
	Points       rewards.PointsCmd         `cmd:"" help:"Show points and claim daily bonuses."`
	Achievements rewards.AchievementsCmd   `cmd:"" help:"Show and check achievements."`
	Assessment   account.AssessmentCmd     `cmd:"" help:"Fill in and compare assessments."`
	Privacy      account.PrivacyCmd        `cmd:"" help:"Manage consents, exports and deletion."`
	Notify       system.NotifyCmd          `cmd:"" help:"Manage reminders and notifications."`
	Config       system.ConfigCmd          `cmd:"" name:"config" help:"Manage credentials stored in the OS keyring."`
	Backup       system.BackupCmd          `cmd:"" help:"Manage database backups."`
	Serve        system.ServeCmd           `cmd:"" help:"Serve the REST API."`
	Doctor       system.DoctorCmd          `cmd:"" help:"Run health checks and diagnostics."`
}

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Reto 21D: build habits in a 21-day challenge"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigPath,
		},
	)

	connStr, fromKeyring := resolveConfig(CLI.DB)
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir(connStr)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(connStr, fromKeyring)
	if err != nil {
		errors.Fatal(err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatalf("unknown timezone %q: %v", CLI.Timezone, err)
	}

	appCtx := &cli.Context{
		Store:        store,
		Location:     loc,
		Latency:      CLI.Latency,
		PersistState: CLI.PersistState,
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	errors.Fatal(err)
}

// resolveConfig falls back to the keyring connection string when the
// database path was left at its default
func resolveConfig(config string) (string, bool) {
	if config == constants.DefaultConfigPath {
		if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
			return connStr, true
		}
	}
	return expandHome(config), false
}

func isPostgres(connStr string) bool {
	return postgres.IsURL(connStr) || strings.Contains(connStr, "host=")
}

// openStore picks PostgreSQL for connection strings and SQLite otherwise.
// Only keyring entries may carry a password.
func openStore(connStr string, fromKeyring bool) (storage.Provider, error) {
	if !isPostgres(connStr) {
		return sqlite.NewStore(connStr), nil
	}
	err := postgres.ValidateConnString(connStr)
	switch {
	case err == nil, fromKeyring && errors.Is(err, postgres.ErrEmbeddedCredentials):
		return postgres.New(connStr), nil
	case errors.Is(err, postgres.ErrEmbeddedCredentials):
		return nil, fmt.Errorf("%w; store it with '%s config set' or use .pgpass / PGPASSWORD instead", err, constants.AppName)
	}
	return nil, err
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// configDir holds the log directory; next to the database for SQLite
func configDir(connStr string) string {
	if isPostgres(connStr) {
		return filepath.Dir(expandHome(constants.DefaultConfigPath))
	}
	return filepath.Dir(connStr)
}
