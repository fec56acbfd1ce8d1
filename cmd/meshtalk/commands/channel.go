package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func channelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage channel membership",
	}

	var withPassword bool
	join := &cobra.Command{
		Use:   "join <tag>",
		Short: "Join a channel, deriving its key when password-protected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			password := ""
			if withPassword {
				var err error
				if password, err = promptPassphrase("channel password"); err != nil {
					return err
				}
			}
			return wire.Channels.Join(tag, password, "")
		},
	}
	join.Flags().BoolVar(&withPassword, "password", false, "prompt for the channel password")

	leave := &cobra.Command{
		Use:   "leave <tag>",
		Short: "Leave a channel and wipe its key material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.Channels.Leave(args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ch := range wire.Channels.Channels() {
				state := "left"
				if ch.Joined {
					state = "joined"
				}
				locked := ""
				if ch.Protected {
					locked = " (protected)"
				}
				fmt.Printf("%-20s %s%s  unread=%d\n", ch.Tag, state, locked, wire.Messages.UnreadCount(ch.Tag))
			}
			return nil
		},
	}

	cmd.AddCommand(join, leave, list)
	return cmd
}
