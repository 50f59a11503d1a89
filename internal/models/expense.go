package models

// Expense represents a payment made by one person on behalf of a set of
// participants. Shares are computed once when the expense is created and
// never change afterwards.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Dinner").
	Description string

	// Amount is the total paid.
	Amount float64

	// PaidBy is the name of the member who paid.
	PaidBy string

	// Participants are the names of the people the expense was split among.
	Participants []string

	// SplitType records the strategy the shares came from
	// ("equal", "percent" or "unequal").
	SplitType string

	// Shares maps participant name to the amount that participant owes.
	Shares map[string]float64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Clone returns a deep copy of the expense.
func (e Expense) Clone() Expense {
	c := e
	c.Participants = append([]string(nil), e.Participants...)
	c.Shares = make(map[string]float64, len(e.Shares))
	for k, v := range e.Shares {
		c.Shares[k] = v
	}
	return c
}
