package commands

import (
	"fmt"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"meshtalk/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	var showQR bool

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := promptPassphrase("passphrase")
			if err != nil {
				return err
			}
			id, err := wire.Identity.LoadIdentity(pass)
			if err != nil {
				return err
			}
			fp := crypto.Fingerprint(id.Pub[:])
			fmt.Printf("Fingerprint: %s\n", fp)
			if showQR {
				// Scannable form for out-of-band verification.
				qrterminal.GenerateHalfBlock(fp, qrterminal.L, os.Stdout)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showQR, "qr", false, "also render the fingerprint as a QR code")
	return cmd
}
