package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hbomb79/mediaprobe/internal"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction service and REST API until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return internal.New(*config).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
