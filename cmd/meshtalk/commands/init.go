package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"meshtalk/internal/crypto"
	"meshtalk/internal/domain"
)

func initCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate the local identity key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := promptPassphrase("passphrase")
			if err != nil {
				return err
			}

			priv, pub, err := crypto.GenerateKeyPair()
			if err != nil {
				return err
			}
			id := domain.LocalIdentity{Pub: pub, Priv: priv, Nickname: nickname}
			if err := wire.Identity.SaveIdentity(pass, id); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\n", crypto.Fingerprint(pub[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "anon", "display name shown to partners")
	return cmd
}
