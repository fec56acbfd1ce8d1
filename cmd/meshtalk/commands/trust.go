package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"meshtalk/internal/domain"
)

func trustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Manage favorite and blocked partners",
	}

	toggle := func(use, short string, apply func(domain.Fingerprint) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <fingerprint>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return apply(domain.Fingerprint(args[0]))
			},
		}
	}

	cmd.AddCommand(
		toggle("favorite", "Mark a fingerprint as favorite", func(f domain.Fingerprint) error {
			return wire.Trust.SetFavorite(f, true)
		}),
		toggle("unfavorite", "Unmark a favorite", func(f domain.Fingerprint) error {
			return wire.Trust.SetFavorite(f, false)
		}),
		toggle("block", "Block a fingerprint", func(f domain.Fingerprint) error {
			return wire.Trust.SetBlocked(f, true)
		}),
		toggle("unblock", "Unblock a fingerprint", func(f domain.Fingerprint) error {
			return wire.Trust.SetBlocked(f, false)
		}),
		&cobra.Command{
			Use:   "list",
			Short: "List trust records",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, f := range wire.Trust.Favorites() {
					fmt.Printf("favorite  %s\n", f)
				}
				for _, f := range wire.Trust.Blocked() {
					fmt.Printf("blocked   %s\n", f)
				}
				return nil
			},
		},
	)
	return cmd
}
