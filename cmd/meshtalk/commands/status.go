package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show engine counters and unread conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := wire.Metrics.Snapshot()
			b, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))

			for _, id := range wire.Messages.UnreadPrivate() {
				fmt.Fprintf(os.Stdout, "unread: %s\n", id)
			}
			if cfg.MetricsPath != "" {
				return wire.Metrics.WriteSnapshot(cfg.MetricsPath)
			}
			return nil
		},
	}
	return cmd
}
