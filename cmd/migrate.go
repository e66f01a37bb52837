package cmd

import (
	"github.com/hbomb79/mediaprobe/internal"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply any pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateSections(config.Database); err != nil {
			return err
		}

		return internal.Migrate(cmd.Context(), *config)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
