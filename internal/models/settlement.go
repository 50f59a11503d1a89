package models

// Settlement represents a payment between group members to clear debts.
// It is not tied to any particular debt or expense.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUser is the member who paid (debtor settling up).
	FromUser string

	// ToUser is the member who received payment (creditor being paid).
	ToUser string

	// Amount is the payment amount.
	Amount float64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user who recorded this settlement, if known.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
