package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// Format renders the debt for display, e.g. "Bob owes Alice ₹100.00".
func (d DebtEdge) Format(currency string) string {
	return fmt.Sprintf("%s owes %s %s%s", d.From, d.To, currency, decimal.NewFromFloat(Round2(d.Amount)).StringFixed(2))
}

type party struct {
	name    string
	balance float64
}

// SimplifyDebts turns net balances into a list of pairwise debts that,
// once paid, brings every balance to within Tolerance of zero.
//
// Matching is greedy: the first remaining debtor always pays the first
// remaining creditor, in the order the balances are given. Balances are not
// sorted by size, so the result depends on input order and is not guaranteed
// to use the fewest possible transfers. Each step fully settles at least one
// side, so at most debtors+creditors-1 debts are produced.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.NetBalance < -Tolerance:
			debtors = append(debtors, party{name: b.MemberName, balance: b.NetBalance})
		case b.NetBalance > Tolerance:
			creditors = append(creditors, party{name: b.MemberName, balance: b.NetBalance})
		}
	}

	var edges []DebtEdge
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := min(-debtor.balance, creditor.balance)
		edges = append(edges, DebtEdge{
			From:   debtor.name,
			To:     creditor.name,
			Amount: amount,
		})

		debtor.balance += amount
		creditor.balance -= amount

		if abs(debtor.balance) < Tolerance {
			debtors = debtors[1:]
		}
		if abs(creditor.balance) < Tolerance {
			creditors = creditors[1:]
		}
	}

	return edges
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
