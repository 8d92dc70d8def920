package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/app"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
)

// serveCmd runs the HTTP and gRPC servers until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the API servers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a := fx.New(
		fx.Provide(config.NewConfig),
		app.CoreModule,
		app.ServerModule,
	)
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), a.StartTimeout())
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return err
	}

	<-a.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.StopTimeout())
	defer cancel()
	return a.Stop(stopCtx)
}
