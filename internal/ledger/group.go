// Package ledger keeps a group's expense and settlement history and the
// simplified debts derived from it.
//
// A Group is not safe for concurrent use. Callers that share a Group
// between goroutines must serialize access themselves.
package ledger

import (
	"fmt"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
)

// Group is a named set of members with an append-only history.
// Debts are recomputed from the whole history after every append.
type Group struct {
	name        string
	members     []string
	memberSet   map[string]struct{}
	expenses    []models.Expense
	settlements []models.Settlement
	balances    []calculator.MemberBalance
	debts       []calculator.DebtEdge
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{
		name:      name,
		memberSet: make(map[string]struct{}),
	}
}

// Replay rebuilds a group from stored history and computes its debts once.
// Expenses must already carry their shares (see RehydrateExpense).
func Replay(name string, members []string, expenses []models.Expense, settlements []models.Settlement) (*Group, error) {
	g := NewGroup(name)
	for _, m := range members {
		if !g.IsMember(m) {
			g.memberSet[m] = struct{}{}
			g.members = append(g.members, m)
		}
	}
	for _, e := range expenses {
		if !g.IsMember(e.PaidBy) {
			return nil, fmt.Errorf("%w: payer %q of %q is not a member of %q", calculator.ErrUnknownParticipant, e.PaidBy, e.Description, name)
		}
		g.expenses = append(g.expenses, e.Clone())
	}
	for _, s := range settlements {
		if !g.IsMember(s.FromUser) || !g.IsMember(s.ToUser) {
			return nil, fmt.Errorf("%w: settlement %s -> %s outside %q", calculator.ErrUnknownParticipant, s.FromUser, s.ToUser, name)
		}
		g.settlements = append(g.settlements, s)
	}
	g.recompute()
	return g, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// AddMember adds a member. Adding an existing member is a no-op.
// It reports whether the member was new.
func (g *Group) AddMember(name string) bool {
	if g.IsMember(name) {
		return false
	}
	g.memberSet[name] = struct{}{}
	g.members = append(g.members, name)
	// A new member starts at zero; refresh so Balances lists them.
	g.recompute()
	return true
}

// IsMember reports whether name belongs to the group.
func (g *Group) IsMember(name string) bool {
	_, ok := g.memberSet[name]
	return ok
}

// Members returns the members in the order they joined.
func (g *Group) Members() []string {
	return append([]string(nil), g.members...)
}

// AddExpense appends an expense and recomputes debts. The payer must be a
// member; participants that are not members are allowed and their shares
// are ignored when computing balances.
func (g *Group) AddExpense(e models.Expense) error {
	if !g.IsMember(e.PaidBy) {
		return fmt.Errorf("%w: payer %q is not a member of %q", calculator.ErrUnknownParticipant, e.PaidBy, g.name)
	}
	g.expenses = append(g.expenses, e.Clone())
	g.recompute()
	return nil
}

// SettleUp appends a settlement from one member to another and recomputes
// debts. The amount is not checked against any outstanding debt.
func (g *Group) SettleUp(s models.Settlement) error {
	for _, name := range []string{s.FromUser, s.ToUser} {
		if !g.IsMember(name) {
			return fmt.Errorf("%w: %q is not a member of %q", calculator.ErrUnknownParticipant, name, g.name)
		}
	}
	g.settlements = append(g.settlements, s)
	g.recompute()
	return nil
}

// Recompute rebuilds balances and debts from the full history.
// Calling it again without new history yields the same debts.
func (g *Group) Recompute() {
	g.recompute()
}

func (g *Group) recompute() {
	expenses := make([]calculator.ExpenseForBalance, len(g.expenses))
	for i, e := range g.expenses {
		expenses[i] = calculator.ExpenseForBalance{
			Amount:  e.Amount,
			PayerID: e.PaidBy,
			Shares:  e.Shares,
		}
	}
	settlements := make([]calculator.SettlementForBalance, len(g.settlements))
	for i, s := range g.settlements {
		settlements[i] = calculator.SettlementForBalance{
			FromUserID: s.FromUser,
			ToUserID:   s.ToUser,
			Amount:     s.Amount,
		}
	}

	// Appends only accept members and membership never shrinks, so every
	// payer and settlement party is still a member here.
	balances, err := calculator.CalculateGroupBalances(g.members, expenses, settlements)
	if err != nil {
		panic(fmt.Sprintf("ledger: inconsistent history for group %q: %v", g.name, err))
	}
	g.balances = balances
	g.debts = calculator.SimplifyDebts(balances)
}

// Debts returns the current simplified debts.
func (g *Group) Debts() []calculator.DebtEdge {
	return append([]calculator.DebtEdge(nil), g.debts...)
}

// Balances returns every member's current balance in member order.
func (g *Group) Balances() []calculator.MemberBalance {
	return append([]calculator.MemberBalance(nil), g.balances...)
}

// Expenses returns a copy of the expense history, oldest first.
func (g *Group) Expenses() []models.Expense {
	out := make([]models.Expense, len(g.expenses))
	for i, e := range g.expenses {
		out[i] = e.Clone()
	}
	return out
}

// Settlements returns a copy of the settlement history, oldest first.
func (g *Group) Settlements() []models.Settlement {
	return append([]models.Settlement(nil), g.settlements...)
}
