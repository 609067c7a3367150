package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <snapshot-file> <path>",
		Short: "Evaluate a gjson path against a snapshot file",
		Long:  `Ad-hoc snapshot inspection, e.g.: statectl query data/memory/user_memory.json 'u1.entries.#' or statectl query data/memory/sessions/active_sessions.json '@keys'.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			if !gjson.ValidBytes(data) {
				return fmt.Errorf("snapshot %s is not valid JSON", args[0])
			}

			res := gjson.GetBytes(data, args[1])
			if !res.Exists() {
				return fmt.Errorf("path %q matched nothing", args[1])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Raw)
			return err
		},
	}
}
