package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/prodhub/internal/client/api"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/spf13/cobra"
)

func (a *App) repoCmd() *cobra.Command {
	repo := &cobra.Command{
		Use:     "repo",
		Aliases: []string{"repos"},
		Short:   "List and create repositories",
	}
	repo.AddCommand(a.repoListCmd(), a.repoCreateCmd())
	return repo
}

func (a *App) repoListCmd() *cobra.Command {
	var (
		userID     string
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List public repositories, or those of one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []models.Repository
				err  error
			)
			if userID != "" {
				list, err = a.client().ListByOwner(cmd.Context(), userID)
			} else {
				list, err = a.client().ListPublic(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tOWNER\tSTARS\tVISIBILITY\tUPDATED")
			for _, r := range list {
				visibility := "public"
				if r.IsPrivate {
					visibility = "private"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, r.OwnerUsername, r.Stars, visibility, r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "list repositories of this user id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of public repositories")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *App) repoCreateCmd() *cobra.Command {
	var (
		in    api.CreateRepositoryInput
		genre string
		bpm   int
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a repository with a main branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if genre != "" {
				in.Genre = &genre
			}
			if cmd.Flags().Changed("bpm") {
				in.BPM = &bpm
			}
			r, err := a.client().CreateRepository(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s/%s (%s)\n", r.OwnerUsername, r.Name, r.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().BoolVar(&in.IsPrivate, "private", false, "make the repository private")
	cmd.Flags().StringVar(&genre, "genre", "", "genre")
	cmd.Flags().IntVar(&bpm, "bpm", 0, "tempo in beats per minute")
	return cmd
}

func (a *App) branchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches REPO_ID",
		Short: "List the branches of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client().ListBranches(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEFAULT\tHEAD")
			for _, b := range list {
				head := "-"
				if b.LastCommitID != nil {
					head = *b.LastCommitID
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", b.ID, b.Name, b.IsDefault, head)
			}
			return tw.Flush()
		},
	}
}

func (a *App) commitsCmd() *cobra.Command {
	var branchID string
	cmd := &cobra.Command{
		Use:   "commits REPO_ID",
		Short: "List the commits of a branch, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if branchID == "" {
				b, err := c.DefaultBranch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				branchID = b.ID
			}
			list, err := c.ListCommits(cmd.Context(), args[0], branchID)
			if err != nil {
				return err
			}
			for _, cm := range list {
				fmt.Fprintf(a.out, "%s  %s  %s  (%d files)\n", cm.CreatedAt.Format("2006-01-02 15:04"), cm.AuthorName, cm.Message, len(cm.Files))
				for _, f := range cm.Files {
					fmt.Fprintf(a.out, "    %-5s %s\n", f.Type, f.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id (default branch when empty)")
	return cmd
}
