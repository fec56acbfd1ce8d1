package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"meshtalk/internal/app"
)

var (
	home       string
	passphrase string

	cfg  app.Config
	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "meshtalk",
		Short: "Multi-transport encrypted chat engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = app.LoadConfig()
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			wire, err = app.NewWire(cfg, app.Collaborators{})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.meshtalk)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity keys")

	root.AddCommand(initCmd(), fingerprintCmd(), trustCmd(), channelCmd(), peersCmd(), statusCmd())
	return root.Execute()
}

// promptPassphrase returns the --passphrase flag or reads one from the
// terminal without echo.
func promptPassphrase(label string) (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
