package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage registered users",
	}

	var email string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.svc.AddUser(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' added successfully!\n", user.Name)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range users {
				if u.Email != "" {
					fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
				} else {
					fmt.Fprintln(out, u.Name)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
