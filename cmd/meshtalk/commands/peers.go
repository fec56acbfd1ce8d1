package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"meshtalk/internal/domain"
)

func peersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peers",
		Short: "Inspect and extend the public-key directory",
	}

	add := &cobra.Command{
		Use:   "add <session-id> <fingerprint>",
		Short: "Record which fingerprint a session announced",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.Peers.RecordSession(args[0], domain.Fingerprint(args[1]))
		},
	}

	alias := &cobra.Command{
		Use:   "alias <alias> <pubkey-hex> [fingerprint]",
		Short: "Record the resolution of a relay alias",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f domain.Fingerprint
			if len(args) == 3 {
				f = domain.Fingerprint(args[2])
			}
			return wire.Peers.RecordRelayAlias(args[0], args[1], f)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known session mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			for sid, f := range wire.Peers.Sessions() {
				fmt.Printf("%-20s %s\n", sid, f)
			}
			return nil
		},
	}

	cmd.AddCommand(add, alias, list)
	return cmd
}
