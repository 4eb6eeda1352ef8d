// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tickets/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Events aggregator and ticketing service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server with the outbox worker and the periodic catalog sync",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "sync",
				Usage: "Run one catalog synchronization against the Events Provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "changed-at",
						Aliases: []string{"c"},
						Value:   "",
						Usage:   "Sync events changed since this date (YYYY-MM-DD), overriding the stored watermark",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSync(ctx, cmd.String("changed-at"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
