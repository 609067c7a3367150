package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/intentlayer/statecore"
	"github.com/intentlayer/statecore/memory"
	"github.com/intentlayer/statecore/persist"
	"github.com/intentlayer/statecore/session"
	"github.com/spf13/cobra"
)

func newSweepCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run expiry and retention sweeps against the snapshot files",
		Long:  "Opens both snapshot files, applies the session-expiry and memory-retention sweeps that a live instance would run, writes the results back and reports what remains.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Construction runs each store's startup sweep.
			sessions := session.New(session.Config{
				Timeout:    cfg.Session.Timeout,
				MaxPerUser: cfg.Session.MaxPerUser,
			}, persist.NewJSONFile(filepath.Join(cfg.DataDir, statecore.SessionSnapshotFile)), nil)
			defer sessions.Close()

			mem := memory.New(memory.Config{
				MaxEntries:    cfg.Memory.MaxEntries,
				RetentionDays: cfg.Memory.RetentionDays,
			}, persist.NewJSONFile(filepath.Join(cfg.DataDir, statecore.MemorySnapshotFile)), nil)
			defer mem.Close()

			stats := mem.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"sweep complete: %d live sessions, %d users, %d memory entries\n",
				sessions.Count(), stats.TotalUsers, stats.TotalEntries)
			return err
		},
	}
}
