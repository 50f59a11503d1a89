package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) groupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	var members string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group; unknown member names are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, skipped, err := a.svc.CreateGroup(cmd.Context(), args[0], splitNames(members))
			if err != nil {
				return err
			}
			for _, name := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: User '%s' not found and not added.\n", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group '%s' created!\n", group.Name)
			return nil
		},
	}
	create.Flags().StringVar(&members, "members", "", "comma separated member names")

	addMember := &cobra.Command{
		Use:   "add-member GROUP NAME...",
		Short: "Add registered users to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.svc.AddMembers(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", group.Name, strings.Join(group.Members, ", "))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show GROUP",
		Short: "Show a group's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.svc.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", group.Name, strings.Join(group.Members, ", "))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.svc.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", g.Name, strings.Join(g.Members, ", "))
			}
			return nil
		},
	}

	cmd.AddCommand(create, addMember, show, list)
	return cmd
}
