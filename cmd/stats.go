package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/intentlayer/statecore"
	"github.com/intentlayer/statecore/memory"
	"github.com/intentlayer/statecore/persist"
	"github.com/spf13/cobra"
)

func newStatsCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print usage statistics from the memory snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			snap := persist.NewJSONFile(filepath.Join(cfg.DataDir, statecore.MemorySnapshotFile))
			store := memory.New(memory.Config{
				MaxEntries:    cfg.Memory.MaxEntries,
				RetentionDays: cfg.Memory.RetentionDays,
			}, snap, nil)
			defer store.Close()

			out, err := json.MarshalIndent(store.Stats(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode stats: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
