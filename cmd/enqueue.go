package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <media-id>...",
	Short: "Queue media for attribute extraction by a running server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateSections(config.Queue); err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(args))
		for _, arg := range lo.Uniq(args) {
			id, err := uuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("'%s' is not a valid media ID: %w", arg, err)
			}
			ids = append(ids, id)
		}

		added, err := internal.Enqueue(cmd.Context(), *config, ids)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Queued %d of %d media (others were already waiting)\n", added, len(ids))
		return nil
	},
}

var backfillLimit uint64

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Queue every media record which has never had its attributes extracted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateSections(config.Database, config.Queue); err != nil {
			return err
		}

		added, err := internal.Backfill(cmd.Context(), *config, backfillLimit)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Queued %d media for extraction\n", added)
		return nil
	},
}

func init() {
	backfillCmd.Flags().Uint64Var(&backfillLimit, "limit", 0, "Maximum number of media to queue (0 for no limit)")
	rootCmd.AddCommand(enqueueCmd, backfillCmd)
}
