package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tickoff/internal"
	"github.com/starford/tickoff/internal/widget"
	pkgconfig "github.com/starford/tickoff/pkg/config"
)

func loadConfig(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunTUI(ctx, opts...)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

// oneShot adapts a list operation built from the command's arguments.
func oneShot(args int, op func(cmd *cli.Command) (func(*widget.Widget) error, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != args {
			return fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, args, cmd.Args().Len())
		}
		fn, err := op(cmd)
		if err != nil {
			return err
		}
		opts, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return internal.Exec(ctx, fn, opts...)
	}
}

func position(cmd *cli.Command, i int) (int, error) {
	n, err := strconv.Atoi(cmd.Args().Get(i))
	if err != nil {
		return 0, fmt.Errorf("%s: position %q is not a number", cmd.Name, cmd.Args().Get(i))
	}
	return n, nil
}

func main() {
	cmd := &cli.Command{
		Name:   "tickoff",
		Usage:  "Local-first ordered task list with a terminal UI, HTTP API and MCP tools",
		Action: runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and event stream",
				Action: serve,
			},
			{
				Name:   "tui",
				Usage:  "Open the terminal UI (default)",
				Action: runTUI,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:  "list",
				Usage: "Print the list",
				Action: oneShot(0, func(*cli.Command) (func(*widget.Widget) error, error) {
					return internal.List, nil
				}),
			},
			{
				Name:      "add",
				Usage:     "Append a task",
				ArgsUsage: "<text>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					text := strings.Join(cmd.Args().Slice(), " ")
					opts, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Exec(ctx, internal.Add(text), opts...)
				},
			},
			{
				Name:      "check",
				Usage:     "Toggle the task at position n",
				ArgsUsage: "<n>",
				Action: oneShot(1, func(cmd *cli.Command) (func(*widget.Widget) error, error) {
					n, err := position(cmd, 0)
					return internal.Check(n), err
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete the task at position n",
				ArgsUsage: "<n>",
				Action: oneShot(1, func(cmd *cli.Command) (func(*widget.Widget) error, error) {
					n, err := position(cmd, 0)
					return internal.Delete(n), err
				}),
			},
			{
				Name:      "move",
				Usage:     "Swap the task at position n with its neighbour",
				ArgsUsage: "<n> up|down",
				Action: oneShot(2, func(cmd *cli.Command) (func(*widget.Widget) error, error) {
					n, err := position(cmd, 0)
					return internal.Move(n, cmd.Args().Get(1)), err
				}),
			},
			{
				Name:      "reorder",
				Usage:     "Drag the task at position from onto position to",
				ArgsUsage: "<from> <to>",
				Action: oneShot(2, func(cmd *cli.Command) (func(*widget.Widget) error, error) {
					from, err := position(cmd, 0)
					if err != nil {
						return nil, err
					}
					to, err := position(cmd, 1)
					return internal.Reorder(from, to), err
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
