package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/app"
	"github.com/JakeFAU/linkdiff/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [port]",
		Short: "Run the web frontend and JSON API",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(runServe),
	}
}

func runServe(cmd *cobra.Command, args []string, a *app.App) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	port := config.ResolvePort(arg, os.Getenv("PORT"), a.Config().Server.Port, a.Logger())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger().Info("linkdiff listening",
		zap.Int("port", port),
		zap.String("frontend", fmt.Sprintf("http://localhost:%d", port)),
	)
	return a.Serve(ctx, port)
}
