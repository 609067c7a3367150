package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/intentlayer/statecore"
	"github.com/intentlayer/statecore/persist"
	"github.com/intentlayer/statecore/session"
	"github.com/spf13/cobra"
)

func newSessionsCmd(loadConfig configLoader) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List a user's live sessions from the session snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := session.New(session.Config{
				Timeout:    cfg.Session.Timeout,
				MaxPerUser: cfg.Session.MaxPerUser,
			}, persist.NewJSONFile(filepath.Join(cfg.DataDir, statecore.SessionSnapshotFile)), nil)
			defer store.Close()

			sessions := store.ListForUser(userID)
			if len(sessions) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no live sessions for user %s\n", userID)
				return err
			}
			for _, s := range sessions {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\tcreated=%s\tlast_activity=%s\tinteractions=%d\n",
					s.ID,
					s.CreatedAt.Format(time.RFC3339),
					s.LastActivity.Format(time.RFC3339),
					s.InteractionCount)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user identifier")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
