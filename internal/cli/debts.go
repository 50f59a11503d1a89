package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsmart/internal/report"
	"github.com/mmynk/splitsmart/internal/service"
)

func (a *app) settleCommand() *cobra.Command {
	var group, from, to, amount, note string
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Record a direct payment between two members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			_, debts, err := a.svc.SettleUp(cmd.Context(), service.SettlementRequest{
				Group:  group,
				From:   from,
				To:     to,
				Amount: value,
				Note:   note,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s paid %s %s.\n", from, to, money(a.cfg.Display.Currency, value))
			printDebts(out, "Updated Debts for "+group, debts, a.cfg.Display.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group name")
	cmd.Flags().StringVar(&from, "from", "", "who paid")
	cmd.Flags().StringVar(&to, "to", "", "who received")
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	for _, name := range []string{"group", "from", "to", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) debtsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "debts GROUP",
		Short: "Show a group's simplified debts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debts, err := a.svc.GetDebts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == formatCSV {
				return report.WriteDebts(cmd.OutOrStdout(), debts)
			}
			printDebts(cmd.OutOrStdout(), "Debts for "+args[0], debts, a.cfg.Display.Currency)
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func (a *app) balancesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "balances GROUP",
		Short: "Show every member's net balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balances, err := a.svc.GetBalances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == formatCSV {
				return report.WriteBalances(out, balances)
			}
			currency := a.cfg.Display.Currency
			for _, b := range balances {
				fmt.Fprintf(out, "%s: paid %s, owes %s, net %s\n",
					b.MemberName, money(currency, b.TotalPaid), money(currency, b.TotalOwed), money(currency, b.NetBalance))
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
