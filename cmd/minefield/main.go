package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/vancomm/minefield/internal/app"
	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/logging"
)

var version = "dev"

func setupLogging(cmd *cli.Command) (*logrus.Logger, error) {
	return logging.New(logging.Options{
		Development: config.Development(),
		Debug:       cmd.Bool("debug"),
		File:        cmd.String("log-file"),
		// stdout belongs to the MCP transport
		Output: os.Stderr,
	})
}

func newApp(cmd *cli.Command, log *logrus.Logger) (*app.App, error) {
	return app.New(log, app.Options{
		Version:     version,
		SessionTTL:  cmd.Duration("session-ttl"),
		BasePath:    config.BasePath(),
		CorsOrigins: cmd.StringSlice("cors-origin"),
	})
}

func serve(ctx context.Context, cmd *cli.Command) error {
	log, err := setupLogging(cmd)
	if err != nil {
		return err
	}

	log.WithField("version", version).Info("starting up")

	a, err := newApp(cmd, log)
	if err != nil {
		return fmt.Errorf("unable to configure app: %w", err)
	}
	defer a.Close()

	return a.Start(ctx, cmd.String("addr"))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	log, err := setupLogging(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, log)
	if err != nil {
		return fmt.Errorf("unable to configure app: %w", err)
	}
	defer a.Close()

	log.Debug("serving mcp over stdio")
	return a.MCP().ServeStdio(ctx, os.Stdin, os.Stdout)
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	cmd := &cli.Command{
		Name:    "minefield",
		Usage:   "minesweeper game server",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log at debug level",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "also write JSON logs to this rotated file",
				Sources: cli.EnvVars("LOG_FILE"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "evict games idle for longer, 0 keeps them forever",
				Value:   time.Hour,
				Sources: cli.EnvVars("SESSION_TTL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the HTTP, websocket and MCP endpoints",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address, defaults to APP_ADDR or :APP_PORT",
						Value: config.Addr(),
					},
					&cli.StringSliceFlag{
						Name:    "cors-origin",
						Usage:   "allowed cross origin, repeatable; any origin when unset",
						Sources: cli.EnvVars("CORS_ORIGINS"),
					},
				},
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("exit")
	}
}
