package cli

import (
	"fmt"

	"github.com/dmitrijs2005/prodhub/internal/client/api"
	"github.com/spf13/cobra"
)

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile of the token holder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client().Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s) <%s>\n", u.Username, u.ID, u.Email)
			return nil
		},
	}
}

func (a *App) profileCmd() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var in api.ProfileInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the profile of the token holder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client().CreateProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created profile %s\n", u.Username)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "email address")
	create.Flags().StringVar(&in.Username, "username", "", "username")
	create.Flags().StringVar(&in.DisplayName, "display-name", "", "display name")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("username")

	profile.AddCommand(create)
	return profile
}
