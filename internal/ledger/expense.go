package ledger

import (
	"fmt"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
)

// NewExpense builds an expense and applies the split strategy to it once.
// If the split is invalid no expense is returned.
func NewExpense(description string, amount float64, paidBy string, participants []string, split calculator.Split) (models.Expense, error) {
	shares, err := split.ComputeShares(amount, participants)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to split %q: %w", description, err)
	}
	return models.Expense{
		Description:  description,
		Amount:       amount,
		PaidBy:       paidBy,
		Participants: append([]string(nil), participants...),
		SplitType:    string(split.Type),
		Shares:       shares,
	}, nil
}

// RehydrateExpense rebuilds an expense whose shares were computed earlier,
// for example when loading history from storage. The shares are taken as
// they are, without applying or validating any split strategy.
func RehydrateExpense(description string, amount float64, paidBy string, participants []string, shares map[string]float64) models.Expense {
	e := models.Expense{
		Description:  description,
		Amount:       amount,
		PaidBy:       paidBy,
		Participants: participants,
		SplitType:    string(calculator.SplitUnequal),
		Shares:       shares,
	}
	return e.Clone()
}
