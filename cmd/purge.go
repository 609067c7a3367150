package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intentlayer/statecore"
	"github.com/intentlayer/statecore/persist"
	"github.com/intentlayer/statecore/session"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func newPurgeUserCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-user <user-id>",
		Short: "Erase every trace of a user from the snapshot files",
		Long:  "Removes the user's memory aggregate and deletes their sessions. Intended for data-erasure requests handled while no live instance owns the snapshots.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			erased, err := purgeMemorySnapshot(filepath.Join(cfg.DataDir, statecore.MemorySnapshotFile), userID)
			if err != nil {
				return err
			}

			store := session.New(session.Config{
				Timeout:    cfg.Session.Timeout,
				MaxPerUser: cfg.Session.MaxPerUser,
			}, persist.NewJSONFile(filepath.Join(cfg.DataDir, statecore.SessionSnapshotFile)), nil)
			defer store.Close()

			deleted := 0
			for _, s := range store.ListForUser(userID) {
				if store.Delete(s.ID) {
					deleted++
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"purged user %s: memory erased=%t, sessions deleted=%d\n", userID, erased, deleted)
			return err
		},
	}
}

// purgeMemorySnapshot deletes the user's aggregate by rewriting the snapshot
// in place, without decoding unrelated users. Reports whether the user had
// an aggregate to erase.
func purgeMemorySnapshot(path, userID string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read memory snapshot: %w", err)
	}

	key := escapePathKey(userID)
	if !gjson.GetBytes(data, key).Exists() {
		return false, nil
	}

	updated, err := sjson.DeleteBytes(data, key)
	if err != nil {
		return false, fmt.Errorf("erase user from snapshot: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return false, fmt.Errorf("write memory snapshot: %w", err)
	}
	return true, nil
}

// escapePathKey escapes gjson path metacharacters so arbitrary user ids can
// address top-level snapshot keys.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
