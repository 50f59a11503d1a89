package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/report"
	"github.com/mmynk/splitsmart/internal/service"
)

func (a *app) expenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and list expenses",
	}

	var (
		group        string
		description  string
		amount       string
		paidBy       string
		participants string
		splitType    string
		shares       string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an expense and show the group's updated debts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := parseAmount(amount)
			if err != nil {
				return err
			}
			split, err := buildSplit(splitType, shares)
			if err != nil {
				return err
			}

			names := []string{service.AllMembers}
			if !strings.EqualFold(strings.TrimSpace(participants), service.AllMembers) {
				names = splitNames(participants)
			}

			expense, debts, err := a.svc.AddExpense(cmd.Context(), service.ExpenseRequest{
				Group:        group,
				Description:  description,
				Amount:       total,
				PaidBy:       paidBy,
				Participants: names,
				Split:        split,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Expense '%s' of %s added.\n", expense.Description, money(a.cfg.Display.Currency, expense.Amount))
			printDebts(out, "Updated Debts for "+group, debts, a.cfg.Display.Currency)
			return nil
		},
	}
	add.Flags().StringVar(&group, "group", "", "group name")
	add.Flags().StringVar(&description, "desc", "", "description")
	add.Flags().StringVar(&amount, "amount", "", "total amount")
	add.Flags().StringVar(&paidBy, "paid-by", "", "name of the member who paid")
	add.Flags().StringVar(&participants, "participants", service.AllMembers, "comma separated names, or 'all'")
	add.Flags().StringVar(&splitType, "split", string(calculator.SplitEqual), "split type: equal, percent or unequal")
	add.Flags().StringVar(&shares, "shares", "", "percent or unequal split values, e.g. Alice=60,Bob=40")
	for _, name := range []string{"group", "amount", "paid-by"} {
		_ = add.MarkFlagRequired(name)
	}

	var format string
	list := &cobra.Command{
		Use:   "list GROUP",
		Short: "List a group's expenses, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expenses, err := a.svc.ListExpenses(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == formatCSV {
				return report.WriteExpenses(out, expenses)
			}
			for _, e := range expenses {
				fmt.Fprintf(out, "%s: %s paid by %s (%s)\n", e.Description, money(a.cfg.Display.Currency, e.Amount), e.PaidBy, e.SplitType)
			}
			return nil
		},
	}
	addFormatFlag(list, &format)

	cmd.AddCommand(add, list)
	return cmd
}

// buildSplit turns the --split and --shares flags into a split strategy.
func buildSplit(splitType, shares string) (calculator.Split, error) {
	t, err := calculator.ParseSplitType(splitType)
	if err != nil {
		return calculator.Split{}, err
	}
	if t == calculator.SplitEqual {
		return calculator.EqualSplit(), nil
	}

	values, err := parseShares(shares)
	if err != nil {
		return calculator.Split{}, err
	}
	if len(values) == 0 {
		return calculator.Split{}, errors.New("--shares is required for percent and unequal splits")
	}
	if t == calculator.SplitPercent {
		return calculator.PercentSplit(values), nil
	}
	return calculator.UnequalSplit(values), nil
}

const (
	formatText = "text"
	formatCSV  = "csv"
)

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", formatText, "output format: text or csv")
}

// printDebts prints one line per debt, or a note that nothing is owed.
func printDebts(w io.Writer, title string, debts []calculator.DebtEdge, currency string) {
	fmt.Fprintf(w, "--- %s ---\n", title)
	if len(debts) == 0 {
		fmt.Fprintln(w, "No outstanding debts.")
	}
	for _, d := range debts {
		fmt.Fprintln(w, d.Format(currency))
	}
	fmt.Fprintln(w, "------------------------")
}
