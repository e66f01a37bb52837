package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/hbomb79/mediaprobe/internal"
	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/spf13/cobra"
)

var checkOnly bool

// probeCmd runs ffprobe against local files, printing the attributes which
// would be persisted for each. Nothing is written to the database.
var probeCmd = &cobra.Command{
	Use:   "probe <path>...",
	Short: "Print the media attributes of one or more local files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateSections(config.Probe); err != nil {
			return err
		}

		prober, err := probe.New(config.Probe)
		if err != nil {
			return err
		}

		output := make(map[string]any, len(args))
		for _, path := range args {
			valid, err := prober.IsValid(cmd.Context(), path)
			if err != nil {
				return err
			}
			if checkOnly || !valid {
				output[path] = map[string]any{"valid": valid}
				continue
			}

			result, err := prober.Probe(cmd.Context(), path)
			if err != nil {
				return err
			}
			output[path] = extract.MapAttributes(result.Format, result.PrimaryStream()).Properties()
		}

		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether each file is valid media")
	rootCmd.AddCommand(probeCmd)
}
