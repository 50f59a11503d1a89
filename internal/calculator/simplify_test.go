package calculator

import (
	"math"
	"reflect"
	"testing"
)

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances []MemberBalance
		want     []DebtEdge
	}{
		{
			name: "two debtors one creditor",
			balances: []MemberBalance{
				{MemberName: "A", NetBalance: 200},
				{MemberName: "B", NetBalance: -100},
				{MemberName: "C", NetBalance: -100},
			},
			want: []DebtEdge{
				{From: "B", To: "A", Amount: 100},
				{From: "C", To: "A", Amount: 100},
			},
		},
		{
			name: "settled member is skipped",
			balances: []MemberBalance{
				{MemberName: "A", NetBalance: 100},
				{MemberName: "B", NetBalance: 0},
				{MemberName: "C", NetBalance: -100},
			},
			want: []DebtEdge{{From: "C", To: "A", Amount: 100}},
		},
		{
			name: "balances within a cent are treated as settled",
			balances: []MemberBalance{
				{MemberName: "A", NetBalance: 0.005},
				{MemberName: "B", NetBalance: -0.005},
			},
			want: nil,
		},
		{
			name: "first debtor pays first creditor regardless of size",
			balances: []MemberBalance{
				{MemberName: "A", NetBalance: -10},
				{MemberName: "B", NetBalance: -90},
				{MemberName: "C", NetBalance: 30},
				{MemberName: "D", NetBalance: 70},
			},
			want: []DebtEdge{
				{From: "A", To: "C", Amount: 10},
				{From: "B", To: "C", Amount: 20},
				{From: "B", To: "D", Amount: 70},
			},
		},
		{
			name:     "no balances",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SimplifyDebts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimplifyDebtsSettlesEveryBalance(t *testing.T) {
	cases := [][]float64{
		{200, -100, -100},
		{-33.33, -33.33, 66.66},
		{12.5, -7.25, 40, -45.25},
		{-1, -2, -3, -4, 5, 5},
		{1000, -250.01, -249.99, -500},
		{0.02, -0.02},
	}

	for _, nets := range cases {
		balances := make([]MemberBalance, len(nets))
		debtors, creditors := 0, 0
		for i, n := range nets {
			balances[i] = MemberBalance{MemberName: string(rune('A' + i)), NetBalance: n}
			if n < -Tolerance {
				debtors++
			} else if n > Tolerance {
				creditors++
			}
		}

		debts := SimplifyDebts(balances)

		if limit := debtors + creditors - 1; len(debts) > limit {
			t.Errorf("%v: %d debts exceeds bound %d", nets, len(debts), limit)
		}

		residual := make(map[string]float64, len(balances))
		for _, b := range balances {
			residual[b.MemberName] = b.NetBalance
		}
		for _, d := range debts {
			if d.Amount <= 0 {
				t.Errorf("%v: non-positive debt %+v", nets, d)
			}
			residual[d.From] += d.Amount
			residual[d.To] -= d.Amount
		}
		for name, r := range residual {
			if math.Abs(r) > Tolerance {
				t.Errorf("%v: %s left with %v after paying debts", nets, name, r)
			}
		}
	}
}

func TestSimplifyDebtsDoesNotMutateInput(t *testing.T) {
	balances := []MemberBalance{
		{MemberName: "A", NetBalance: 50},
		{MemberName: "B", NetBalance: -50},
	}
	SimplifyDebts(balances)
	if balances[0].NetBalance != 50 || balances[1].NetBalance != -50 {
		t.Errorf("input balances changed: %+v", balances)
	}
}

func TestDebtEdgeFormat(t *testing.T) {
	tests := []struct {
		debt     DebtEdge
		currency string
		want     string
	}{
		{DebtEdge{From: "Bob", To: "Alice", Amount: 100}, "₹", "Bob owes Alice ₹100.00"},
		{DebtEdge{From: "C", To: "A", Amount: 33.333333}, "$", "C owes A $33.33"},
		{DebtEdge{From: "C", To: "A", Amount: 0.5}, "", "C owes A 0.50"},
		{DebtEdge{From: "B", To: "A", Amount: 2.675}, "₹", "B owes A ₹2.67"},
		{DebtEdge{From: "B", To: "A", Amount: 0.125}, "₹", "B owes A ₹0.12"},
	}
	for _, tt := range tests {
		if got := tt.debt.Format(tt.currency); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}
