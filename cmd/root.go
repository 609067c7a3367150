package cmd

import (
	"github.com/intentlayer/statecore/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the statectl root command.
func Execute() error {
	return newRootCmd().Execute()
}

// configLoader resolves the effective configuration for a subcommand,
// folding in the persistent --data-dir override.
type configLoader func() (config.Config, error)

func newRootCmd() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:           "statectl",
		Short:         "statectl: offline tooling for statecore snapshot files",
		Long:          "statectl inspects and maintains the session and memory snapshot files of a statecore instance. It operates on the files directly and must not run while a live instance owns them — the stores assume single-process ownership.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "snapshot data directory (defaults to configuration)")

	loadConfig := func() (config.Config, error) {
		cfg, err := config.Load(viper.New())
		if err != nil {
			return config.Config{}, err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatsCmd(loadConfig),
		newSweepCmd(loadConfig),
		newSessionsCmd(loadConfig),
		newPurgeUserCmd(loadConfig),
		newQueryCmd(),
	)

	return rootCmd
}
