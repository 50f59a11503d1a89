package calculator

import "fmt"

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations. Shares are already computed.
type ExpenseForBalance struct {
	Amount  float64
	PayerID string
	Shares  map[string]float64
}

// SettlementForBalance represents a settlement with the minimal information needed for balance calculations.
type SettlementForBalance struct {
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     float64
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberName string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Expenses paid plus settlements paid out
	TotalOwed  float64 // Shares owed plus settlements received
}

// CalculateGroupBalances computes every member's net balance from the full
// expense and settlement history. The result follows the order of members.
//
// Algorithm:
//   - every member starts at zero
//   - for each expense: payer +amount, each member share -share
//   - for each settlement: payer +amount, receiver -amount
//
// Shares owed by people who are not members are ignored. A payer or
// settlement party who is not a member is an error.
func CalculateGroupBalances(members []string, expenses []ExpenseForBalance, settlements []SettlementForBalance) ([]MemberBalance, error) {
	balances := make([]MemberBalance, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		balances[i] = MemberBalance{MemberName: m}
		index[m] = i
	}

	lookup := func(name string) (*MemberBalance, error) {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a group member", ErrUnknownParticipant, name)
		}
		return &balances[i], nil
	}

	for _, e := range expenses {
		payer, err := lookup(e.PayerID)
		if err != nil {
			return nil, err
		}
		payer.TotalPaid += e.Amount

		for participant, share := range e.Shares {
			i, ok := index[participant]
			if !ok {
				continue
			}
			balances[i].TotalOwed += share
		}
	}

	for _, s := range settlements {
		from, err := lookup(s.FromUserID)
		if err != nil {
			return nil, err
		}
		to, err := lookup(s.ToUserID)
		if err != nil {
			return nil, err
		}
		// Payer's balance improves, receiver's balance decreases
		from.TotalPaid += s.Amount
		to.TotalOwed += s.Amount
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid - balances[i].TotalOwed
	}

	return balances, nil
}
