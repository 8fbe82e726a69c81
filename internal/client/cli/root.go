// Package cli implements prodhubctl, a command line client for ProdHub:
// minting development tokens, browsing and creating repositories, and
// pushing a local FL Studio project folder as a commit.
package cli

import (
	"io"

	"github.com/dmitrijs2005/prodhub/internal/buildinfo"
	"github.com/dmitrijs2005/prodhub/internal/client/api"
	"github.com/dmitrijs2005/prodhub/internal/client/config"
	"github.com/spf13/cobra"
)

// App carries what every command needs.
type App struct {
	cfg *config.Config
	out io.Writer
}

func (a *App) client() *api.Client {
	return api.New(a.cfg.ServerURL, a.cfg.Token, a.cfg.Timeout)
}

// NewRootCmd builds the prodhubctl command tree. Output goes to out.
func NewRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	a := &App{cfg: cfg, out: out}

	root := &cobra.Command{
		Use:           "prodhubctl",
		Short:         "Command line client for ProdHub",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "ProdHub API base URL")
	pf.StringVar(&cfg.Token, "token", cfg.Token, "access token")
	// Accepted here so cobra does not reject them; they are read by config.
	pf.StringP("config", "c", "", "JSON config file")
	pf.String("env", "", "dotenv file")

	root.AddCommand(
		a.tokenCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
		a.repoCmd(),
		a.branchesCmd(),
		a.commitsCmd(),
		a.pushCmd(),
	)
	return root
}
