package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/broadcast/pkg/config"
	"github.com/luxfi/broadcast/pkg/logger"
	"github.com/luxfi/broadcast/pkg/transport"
)

const Version = "0.1.0"

// cfg is loaded once in the root Before hook.
var cfg *config.Config

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "bcastctl",
		Usage:   "Encode and inspect framed broadcast requests",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: bcast.yaml in ., $HOME/.bcast, /etc/bcast)",
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "Directory the --config name (default bcast.yaml) is resolved against",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			{
				Name:   "kinds",
				Usage:  "List the request kinds and their frame types",
				Action: runKinds,
			},
			{
				Name:  "version",
				Usage: "Display detailed version information",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Printf("bcastctl version %s\n", Version)
					return nil
				},
			},
		},
	}
}

func setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	path := c.String("config")
	if dir := c.String("config-dir"); dir != "" {
		if path == "" {
			path = "bcast.yaml"
		}
		resolved, err := config.ResolveConfigFile(dir, path)
		if err != nil {
			return ctx, err
		}
		path = resolved
	}

	loaded, err := config.Load(path)
	if err != nil {
		return ctx, err
	}
	cfg = loaded

	logger.Init(cfg.Environment, c.Bool("debug"))
	if level := c.String("log-level"); level != "" {
		if err := logger.SetLevel(level); err != nil {
			return ctx, err
		}
	}
	logger.Debug("Loaded configuration", "environment", cfg.Environment, "maxMessageSize", cfg.MaxMessageSize)
	return ctx, nil
}

func newCodec() *transport.Codec {
	return transport.NewCodec(cfg.TransportConfig())
}
