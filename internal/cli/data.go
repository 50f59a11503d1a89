package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsmart/internal/storage/snapshot"
)

func (a *app) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Save all users and groups to a JSON data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			if err := snapshot.Save(args[0], snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data saved to %s.\n", args[0])
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load users and groups from a JSON data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Import(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data successfully loaded from %s (%d users, %d groups).\n",
				args[0], len(snap.Users), len(snap.Groups))
			return nil
		},
	}
}
