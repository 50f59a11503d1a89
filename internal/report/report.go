// Package report writes group debts, balances and expenses as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
)

// DebtRow is one simplified debt.
type DebtRow struct {
	From   string `csv:"from"`
	To     string `csv:"to"`
	Amount string `csv:"amount"`
}

// BalanceRow is one member's position in a group.
type BalanceRow struct {
	Member    string `csv:"member"`
	TotalPaid string `csv:"total_paid"`
	TotalOwed string `csv:"total_owed"`
	Net       string `csv:"net"`
}

// ExpenseRow is one recorded expense. Participants and shares are
// semicolon separated; shares read "name=amount".
type ExpenseRow struct {
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Amount       string `csv:"amount"`
	PaidBy       string `csv:"paid_by"`
	Split        string `csv:"split"`
	Participants string `csv:"participants"`
	Shares       string `csv:"shares"`
}

// WriteDebts writes debts in the order given.
func WriteDebts(w io.Writer, debts []calculator.DebtEdge) error {
	rows := make([]DebtRow, len(debts))
	for i, d := range debts {
		rows[i] = DebtRow{From: d.From, To: d.To, Amount: money(d.Amount)}
	}
	return write(w, rows)
}

// WriteBalances writes balances in the order given.
func WriteBalances(w io.Writer, balances []calculator.MemberBalance) error {
	rows := make([]BalanceRow, len(balances))
	for i, b := range balances {
		rows[i] = BalanceRow{
			Member:    b.MemberName,
			TotalPaid: money(b.TotalPaid),
			TotalOwed: money(b.TotalOwed),
			Net:       money(b.NetBalance),
		}
	}
	return write(w, rows)
}

// WriteExpenses writes expenses in the order given. Shares follow the
// participant order.
func WriteExpenses(w io.Writer, expenses []models.Expense) error {
	rows := make([]ExpenseRow, len(expenses))
	for i, e := range expenses {
		shares := make([]string, 0, len(e.Participants))
		for _, p := range e.Participants {
			if share, ok := e.Shares[p]; ok {
				shares = append(shares, p+"="+money(share))
			}
		}
		rows[i] = ExpenseRow{
			Date:         time.Unix(e.CreatedAt, 0).UTC().Format("2006-01-02"),
			Description:  e.Description,
			Amount:       money(e.Amount),
			PaidBy:       e.PaidBy,
			Split:        e.SplitType,
			Participants: strings.Join(e.Participants, ";"),
			Shares:       strings.Join(shares, ";"),
		}
	}
	return write(w, rows)
}

func write(w io.Writer, rows any) error {
	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func money(v float64) string {
	return decimal.NewFromFloat(calculator.Round2(v)).StringFixed(2)
}
