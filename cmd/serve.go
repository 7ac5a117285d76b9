package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compatibility API over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			return err
		}

		tables, err := compatibility.LoadTables(config.KeywordsFile)
		if err != nil {
			return fmt.Errorf("loading keyword tables: %w", err)
		}

		// Callers authenticate with their own bearer token, forwarded per request.
		upstream := newFarolClient(config, "", logger)

		cfg := config.Server
		cfg.Debug = viper.GetBool("debug")

		logger.Info("starting the farol-matcher api",
			zap.String("listen", cfg.Listen),
			zap.String("upstream", upstream.APIURL),
		)

		return server.New(cfg, compatibility.NewCalculator(tables), upstream, logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default "+server.DefaultListen+")")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}
