package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/app"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/service"
)

var seedFile string

// seedCmd fills an empty store and exits.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "insert seed bookmarks when the store is empty",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := fx.New(
			fx.Provide(config.NewConfig),
			app.CoreModule,
			fx.Invoke(func(cfg *config.Config, svc *service.Bookmarks, l *zap.SugaredLogger) error {
				if seedFile != "" {
					cfg.SeedFile = seedFile
				}
				return app.Seed(ctx, cfg, svc, l)
			}),
		)
		if err := a.Err(); err != nil {
			return err
		}
		if err := a.Start(ctx); err != nil {
			return err
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), a.StopTimeout())
		defer cancel()
		return a.Stop(stopCtx)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (defaults to the built-in list)")
	rootCmd.AddCommand(seedCmd)
}
