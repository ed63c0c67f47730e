package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/askeladd/deckforge/internal"
	"github.com/askeladd/deckforge/internal/mcpserver"
	"github.com/askeladd/deckforge/internal/pkgservice"
	"github.com/askeladd/deckforge/internal/storage"
	pkgconfig "github.com/askeladd/deckforge/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

// loadConfig builds the effective configuration: defaults, then the YAML
// config file when present, then the PORT / OUTPUT_FOLDER environment
// overrides (surfaced as flags).
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.App.HTTP.Port = int(port)
	}
	if dir := cmd.String("output-dir"); dir != "" {
		cfg.Storage.Path = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	store, err := storage.NewDir(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	return mcpserver.New(pkgservice.NewService(store)).ServeStdio()
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "HTTP listen port (overrides config)",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for generated packages and uploaded media (overrides config)",
			Sources: cli.EnvVars("OUTPUT_FOLDER"),
		},
	}

	cmd := &cli.Command{
		Name:   "deckforge",
		Usage:  "HTTP API that builds Anki flashcard packages (.apkg) from JSON deck descriptions",
		Action: run,
		Flags:  flags,
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve Deckforge tools over the Model Context Protocol on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
