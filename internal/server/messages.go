package server

import (
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
)

// User is the wire form of a registered user.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Group is the wire form of a group.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

// Expense is the wire form of a recorded expense.
type Expense struct {
	ID           string             `json:"id"`
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	PaidBy       string             `json:"paid_by"`
	Participants []string           `json:"participants"`
	SplitType    string             `json:"split_type"`
	Shares       map[string]float64 `json:"shares"`
	CreatedAt    int64              `json:"created_at,omitempty"`
}

// Debt is one simplified debt. Display is the formatted line,
// e.g. "Bob owes Alice ₹25.00".
type Debt struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

// Balance is a member's net position in a group.
type Balance struct {
	Member    string  `json:"member"`
	Net       float64 `json:"net"`
	TotalPaid float64 `json:"total_paid"`
	TotalOwed float64 `json:"total_owed"`
}

type AddUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AddUserResponse struct {
	User User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
	// Skipped lists requested members that are not registered users.
	Skipped []string `json:"skipped,omitempty"`
}

type AddMembersRequest struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
}

type AddMembersResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	Name string `json:"name"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// AddExpenseRequest records an expense. Participants may be ["all"].
// Percentages is read for the percent split and Amounts for the unequal split.
type AddExpenseRequest struct {
	Group        string             `json:"group"`
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	PaidBy       string             `json:"paid_by"`
	Participants []string           `json:"participants"`
	Split        string             `json:"split"`
	Percentages  map[string]float64 `json:"percentages,omitempty"`
	Amounts      map[string]float64 `json:"amounts,omitempty"`
}

type AddExpenseResponse struct {
	Expense Expense `json:"expense"`
	Debts   []Debt  `json:"debts"`
}

type SettleUpRequest struct {
	Group  string  `json:"group"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

type SettleUpResponse struct {
	SettlementID string `json:"settlement_id"`
	Debts        []Debt `json:"debts"`
}

type GetDebtsRequest struct {
	Group string `json:"group"`
}

type GetDebtsResponse struct {
	Debts []Debt `json:"debts"`
}

type GetBalancesRequest struct {
	Group string `json:"group"`
}

type GetBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type ListExpensesRequest struct {
	Group string `json:"group"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

func userToWire(u *models.User) User {
	return User{Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func groupToWire(g *models.Group) Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return Group{ID: g.ID, Name: g.Name, Members: members, CreatedAt: g.CreatedAt}
}

func expenseToWire(e *models.Expense) Expense {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: participants,
		SplitType:    e.SplitType,
		Shares:       e.Shares,
		CreatedAt:    e.CreatedAt,
	}
}

func debtsToWire(debts []calculator.DebtEdge, currency string) []Debt {
	out := make([]Debt, len(debts))
	for i, d := range debts {
		out[i] = Debt{From: d.From, To: d.To, Amount: d.Amount, Display: d.Format(currency)}
	}
	return out
}

func balancesToWire(balances []calculator.MemberBalance) []Balance {
	out := make([]Balance, len(balances))
	for i, b := range balances {
		out[i] = Balance{Member: b.MemberName, Net: b.NetBalance, TotalPaid: b.TotalPaid, TotalOwed: b.TotalOwed}
	}
	return out
}
