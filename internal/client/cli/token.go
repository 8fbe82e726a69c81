package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/spf13/cobra"
)

func (a *App) tokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Long: `Mint an access token signed with the configured secret key.

Only useful against servers sharing that secret, e.g. a local development
server. Example:
  export PRODHUB_TOKEN=$(prodhubctl token --user u1)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			tok, err := auth.GenerateToken(userID, []byte(a.cfg.SecretKey), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token identifies")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&a.cfg.SecretKey, "secret", a.cfg.SecretKey, "HMAC secret key")
	return cmd
}
