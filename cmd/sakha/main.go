// Package main is the sakha CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	sakhacli "github.com/hyperjump/sakha/internal/cli"
	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/server"
	"github.com/hyperjump/sakha/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sakha/config.yaml"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sakha",
		Usage:   "Ask the Bhagavad Gita: hybrid verse search and grounded answers",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
				Value:   defaultConfigPath,
				EnvVars: []string{"SAKHA_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Run the HTTP API",
				Action: serverCommand,
			},
			{
				Name:      "search",
				Usage:     "Search verses",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "number of results", Value: 10},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output format: text or json", Value: "text"},
					&cli.BoolFlag{Name: "keyword", Usage: "enable keyword scoring", Value: true},
					&cli.BoolFlag{Name: "semantic", Usage: "enable semantic scoring", Value: true},
					&cli.BoolFlag{Name: "explain", Usage: "show the keyword score breakdown per verse"},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask one question and print the answer",
				ArgsUsage: "<question...>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output format: text or json", Value: "text"},
				},
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive conversation",
				Action: chatCommand,
			},
			{
				Name:   "embed",
				Usage:  "Build the verse embedding store from the corpus",
				Action: embedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "store path (.db or .json); defaults to data.embeddings_path"},
					&cli.IntFlag{Name: "batch-size", Usage: "verses per embedding request", Value: 32},
					&cli.IntFlag{Name: "concurrency", Usage: "parallel embedding requests", Value: 4},
				},
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "sakha version %s\n", version)
					return nil
				},
			},
		},
	}
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When neither exists the
// built-in defaults are used with secrets from the environment.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			config.ApplyEnv(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads config and creates the logger for a command.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || c.Bool("debug")
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debug))
	return cfg, logger, nil
}

// joinArgs joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func serverCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	// Load eagerly so a missing corpus or store fails startup instead of the first request.
	if err := components.Engine.Init(c.Context); err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}

	srv := server.NewServer(components.Engine, components.Answerer, components.Sessions, cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func searchCommand(c *cli.Context) error {
	q := joinArgs(c.Args().Slice())
	if q == "" {
		return fmt.Errorf("usage: sakha search [flags] <query...>")
	}
	format, err := sakhacli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	response, err := components.Engine.Search(c.Context, &models.SearchQuery{
		Query:           q,
		Limit:           c.Int("limit"),
		KeywordEnabled:  c.Bool("keyword"),
		SemanticEnabled: c.Bool("semantic"),
		Explain:         c.Bool("explain"),
	})
	if err != nil {
		return err
	}
	return sakhacli.WriteSearchResults(c.App.Writer, response, format)
}

func askCommand(c *cli.Context) error {
	q := joinArgs(c.Args().Slice())
	if q == "" {
		return fmt.Errorf("usage: sakha ask [flags] <question...>")
	}
	format, err := sakhacli.ParseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	response, err := components.Answerer.Answer(c.Context, q, nil)
	if err != nil {
		return err
	}
	return sakhacli.WriteAnswer(c.App.Writer, response, format)
}

func chatCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	if err := components.Engine.Init(c.Context); err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sakhacli.Chat(ctx, c.App.Reader, c.App.Writer, components.Answerer, cfg.Session.MaxTurns)
}
