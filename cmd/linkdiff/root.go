package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/app"
	"github.com/JakeFAU/linkdiff/internal/config"
	"github.com/JakeFAU/linkdiff/internal/logging"
)

type appKeyType struct{}

var appKey appKeyType

type rootOptions struct {
	configPath string
	envFile    string
}

// newApp is the application factory. Tests replace it to inject their own wiring.
var newApp = func(cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(cfg, logger)
}

var closeApp = func(a *app.App) { a.Close() }

type appRunFunc func(cmd *cobra.Command, args []string, a *app.App) error

// withApp hands run the services built in PersistentPreRunE and releases them once run
// returns, whether or not it failed.
func withApp(run appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := resolveApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(a)
		return run(cmd, args, a)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "linkdiff [port]",
		Short: "Extract the links on a web page and report which ones are new.",
		Long: `linkdiff fetches a web page, normalizes its hyperlinks and compares them with
the previous extraction of the same page. Run without a subcommand it serves the
web frontend and JSON API.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		RunE: withApp(runServe),
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd(), newExtractCmd(), newHistoryCmd())
	return cmd
}

func buildApp(opts *rootOptions) (*app.App, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize application services: %w", err)
	}
	return a, nil
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}
