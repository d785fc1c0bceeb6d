package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"bookey/internal/config"
	"bookey/internal/flows"
	"bookey/internal/google"
	"bookey/internal/prompt"
	"bookey/internal/screen"
	"bookey/internal/terminal"
	"bookey/internal/theme"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "bookey",
		Usage: "Your calendar, in the terminal.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", EnvVars: []string{"BOOKEY_CONFIG"}, Value: config.DefaultPath(), Usage: "Path of the YAML configuration file."},
			&cli.StringFlag{Name: "backend", Usage: "Calendar backend: google, caldav or memory."},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn or error."},
		},
		Action: uiAction,
		Commands: []*cli.Command{
			{
				Name:   "ui",
				Usage:  "Open the interactive calendar (default).",
				Action: uiAction,
			},
			authCommand(),
			addCommand(),
			deleteCommand(),
			listCommand(),
			initConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("backend") {
		cfg.Backend = strings.ToLower(c.String("backend"))
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func uiAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := setupLogger(cfg.LogLevel, logFile)
	logger.Info("Starting bookey", "backend", cfg.Backend, "timezone", cfg.Timezone)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	backend, err := newBackend(c.Context, cfg, logger, loc)
	if err != nil {
		return err
	}

	stop := terminal.RestoreOnSignal(logger)
	defer stop()

	th := theme.New(termenv.NewOutput(os.Stdout), cfg.Theme)
	defer th.Reset()

	app := &screen.App{
		Keys:     terminal.NewConsole(os.Stdin, int(os.Stdin.Fd()), logger),
		Out:      os.Stdout,
		Theme:    th,
		Backend:  backend,
		Logger:   logger,
		Location: loc,
		Size:     func() (int, int) { return terminal.Size(int(os.Stdout.Fd())) },
	}
	err = app.Run(c.Context)
	if errors.Is(err, terminal.ErrInterrupted) {
		logger.Info("Interrupted")
		fmt.Println()
		return nil
	}
	return err
}

// oneShot runs a non-fullscreen flow with logs on stderr.
func oneShot(run func(*flows.Runner, *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger := setupLogger(cfg.LogLevel, os.Stderr)
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		backend, err := newBackend(c.Context, cfg, logger, loc)
		if err != nil {
			return err
		}

		stop := terminal.RestoreOnSignal(logger)
		defer stop()

		th := theme.New(termenv.NewOutput(os.Stdout), cfg.Theme)
		defer th.Reset()

		runner := &flows.Runner{
			Prompter: &prompt.Prompter{
				Keys:  terminal.NewConsole(os.Stdin, int(os.Stdin.Fd()), logger),
				Out:   os.Stdout,
				Theme: th,
			},
			Backend:  backend,
			Logger:   logger,
			Location: loc,
		}
		err = run(runner, c)
		if errors.Is(err, prompt.ErrCancelled) {
			fmt.Println()
			return nil
		}
		return err
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add an event or a task.",
		Action: oneShot(func(r *flows.Runner, c *cli.Context) error {
			return r.Add(c.Context)
		}),
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete an upcoming event or complete a task.",
		Action: oneShot(func(r *flows.Runner, c *cli.Context) error {
			return r.Delete(c.Context)
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the events of the next seven days.",
		Action: oneShot(func(r *flows.Runner, c *cli.Context) error {
			return r.List(c.Context)
		}),
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel, os.Stderr)
			logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(cfg.Google)
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			if err := google.SaveToken(cfg.Google.TokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", cfg.Google.TokenFile)
			return nil
		},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Write a configuration file with the default settings.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file."},
		},
		Action: func(c *cli.Context) error {
			path := c.String("config")
			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			}
			cfg := config.DefaultConfig()
			cfg.LogFile = config.DefaultLogFile()
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

// openLogFile opens the UI log for appending so log lines never reach the screen.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	return f, nil
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
