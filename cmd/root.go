// Package cmd implements the command-line interface for mediaprobe.
package cmd

import (
	"fmt"
	"os"

	"github.com/hbomb79/mediaprobe/internal"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "~/.config/mediaprobe/config.toml"

var (
	configPath string
	logLevel   string

	// config is loaded before any sub-command runs.
	config *internal.Config
)

var rootCmd = &cobra.Command{
	Use:           "mediaprobe",
	Short:         "Extracts technical attributes from media files using ffprobe",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := homedir.Expand(configPath)
		if err != nil {
			return err
		}

		loaded, err := internal.LoadConfig(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") || loaded.Logging.Level == "" {
			loaded.Logging.Level = logLevel
		}

		logger.SetMinLoggingLevel(logger.ParseLevel(loaded.Logging.Level).Level())
		if loaded.Logging.FilePath != "" {
			logger.EnableFileSink(logger.FileSinkConfig{
				Path:       loaded.Logging.FilePath,
				MaxSizeMB:  loaded.Logging.MaxSizeMB,
				MaxBackups: loaded.Logging.MaxBackups,
				MaxAgeDays: loaded.Logging.MaxAgeDays,
			})
		}

		config = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Minimum log level (verbose, debug, info, warning, error)")
	rootCmd.Long = "Extracts technical attributes from media files using ffprobe.\n\nConfiguration is read from the TOML file given by --config, with the\nfollowing environment variables taking precedence:\n\n" + internal.ConfigUsage()
}

// Execute executes the root command.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Close()
		os.Exit(1)
	}
}
