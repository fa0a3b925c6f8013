package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/keyring"
	"github.com/julianstephens/reto21d/internal/storage/postgres"
)

type ConfigCmd struct {
	Set    ConfigSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    ConfigGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete ConfigDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status ConfigStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	Token  struct {
		Set    TokenSetCmd    `cmd:"" help:"Store the API bearer token, generating one when omitted."`
		Delete TokenDeleteCmd `cmd:"" help:"Remove the API bearer token."`
	} `cmd:"" help:"Manage the API bearer token."`
}

// ConfigSetCmd stores database connection credentials in the OS keyring
type ConfigSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *ConfigSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsURL(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so an embedded password is tolerated here
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  You can now use reto21d without the --config flag")
	return nil
}

type ConfigGetCmd struct{}

func (cmd *ConfigGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'reto21d config set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(cli.MaskPassword(connStr))
	return nil
}

type ConfigDeleteCmd struct{}

func (cmd *ConfigDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type ConfigStatusCmd struct{}

func (cmd *ConfigStatusCmd) Run(ctx *cli.Context) error {
	kr := keyring.Default()
	if !kr.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")
	for _, entry := range []struct{ user, label string }{
		{constants.DefaultKeyringUser, "Connection string"},
		{constants.APITokenKeyringUser, "API token"},
	} {
		if _, err := kr.Get(entry.user); err == nil {
			ctx.Printf("✓ %s is stored in keyring\n", entry.label)
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("ℹ No %s stored in keyring\n", strings.ToLower(entry.label))
		}
	}
	ctx.Printf("Active storage: %s\n", cli.MaskPassword(ctx.Store.GetConfigPath()))
	return nil
}

type TokenSetCmd struct {
	Token string `arg:"" optional:"" help:"Token to store. A random one is generated when omitted."`
}

func (cmd *TokenSetCmd) Run(ctx *cli.Context) error {
	token := cmd.Token
	generated := token == ""
	if generated {
		token = uuid.NewString()
	}
	if err := keyring.Default().Set(constants.APITokenKeyringUser, token); err != nil {
		return err
	}
	ctx.Println("✓ API token stored in OS keyring")
	if generated {
		ctx.Printf("  Token: %s\n", token)
	}
	return nil
}

type TokenDeleteCmd struct{}

func (cmd *TokenDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Default().Delete(constants.APITokenKeyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API token found in keyring")
		}
		return err
	}
	ctx.Println("✓ API token deleted from OS keyring")
	return nil
}
