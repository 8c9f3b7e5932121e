package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/cmd/cli/internal/commands"
	"github.com/wolfeidau/authfront/internal/config"
	"github.com/wolfeidau/authfront/internal/logger"
	"github.com/wolfeidau/authfront/internal/telemetry"
)

var (
	version = "dev"
	cli     struct {
		Register  commands.RegisterCmd `cmd:"" help:"Create an account"`
		Login     commands.LoginCmd    `cmd:"" help:"Log in and store a session"`
		Profile   commands.ProfileCmd  `cmd:"" help:"Show the signed-in user"`
		Status    commands.StatusCmd   `cmd:"" help:"Show the stored session without contacting the server"`
		Logout    commands.LogoutCmd   `cmd:"" help:"Discard the stored session"`
		Debug     bool                 `help:"Enable debug mode." env:"AUTHFRONT_DEBUG"`
		Server    string               `help:"API server URL" default:"http://localhost:3000" env:"AUTHFRONT_API_URL"`
		Timeout   time.Duration        `help:"Request timeout" default:"10s" env:"AUTHFRONT_TIMEOUT"`
		Store     string               `help:"Session store: file, sqlite or memory" default:"file" enum:"file,sqlite,memory" env:"AUTHFRONT_STORE"`
		StoreDir  string               `help:"Session store directory (default ~/.authfront)" env:"AUTHFRONT_STORE_DIR"`
		Config    string               `help:"YAML/JSON config file path" type:"path" env:"AUTHFRONT_CONFIG"`
		Telemetry bool                 `help:"Export traces and metrics over OTLP." env:"AUTHFRONT_TELEMETRY"`
		Version   kong.VersionFlag
	}
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := kong.Parse(&cli,
		kong.Name("authfront"),
		kong.Description("Session-managed client for the authfront API."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	settings := config.Settings{
		ServerURL: cli.Server,
		Timeout:   cli.Timeout,
		Store:     cli.Store,
		StoreDir:  cli.StoreDir,
	}
	if cli.Config != "" {
		fileSettings, err := config.LoadFile(cli.Config)
		cmd.FatalIfErrorf(err)
		settings = settings.Merge(fileSettings)
	}
	cmd.FatalIfErrorf(settings.Validate())

	shutdown := telemetry.Noop
	if cli.Telemetry {
		var err error
		shutdown, err = telemetry.InitTelemetry(ctx, "authfront-cli", version)
		cmd.FatalIfErrorf(err)
	}

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Settings: settings})

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("failed to shutdown telemetry")
	}
	done()

	cmd.FatalIfErrorf(err)
}
