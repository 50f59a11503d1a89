package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tolerance is the amount below which two money values are considered equal.
const Tolerance = 0.01

// ErrUnknownParticipant is returned when a computation references a
// participant that has no entry where one is required.
var ErrUnknownParticipant = errors.New("unknown participant")

// ValidationError reports a split whose parameters are inconsistent with
// the expense amount.
type ValidationError struct {
	Split  SplitType
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s split: %s", e.Split, e.Reason)
}

// SplitType identifies how an expense amount is divided among participants.
type SplitType string

const (
	SplitEqual   SplitType = "equal"
	SplitPercent SplitType = "percent"
	SplitUnequal SplitType = "unequal"
)

// ParseSplitType parses a case-insensitive split type name.
func ParseSplitType(s string) (SplitType, error) {
	switch t := SplitType(strings.ToLower(strings.TrimSpace(s))); t {
	case SplitEqual, SplitPercent, SplitUnequal:
		return t, nil
	default:
		return "", fmt.Errorf("invalid split type %q (want equal, percent or unequal)", s)
	}
}

// Split is a split strategy together with its parameters.
// Percentages is only read for SplitPercent and Amounts only for SplitUnequal.
type Split struct {
	Type        SplitType
	Percentages map[string]float64
	Amounts     map[string]float64
}

// EqualSplit divides the amount evenly.
func EqualSplit() Split {
	return Split{Type: SplitEqual}
}

// PercentSplit divides the amount by the given percentages (participant -> percent).
func PercentSplit(percentages map[string]float64) Split {
	return Split{Type: SplitPercent, Percentages: percentages}
}

// UnequalSplit assigns fixed amounts (participant -> amount).
func UnequalSplit(amounts map[string]float64) Split {
	return Split{Type: SplitUnequal, Amounts: amounts}
}

// ComputeShares returns the share each participant owes for an expense of
// the given amount. Validation failures return a *ValidationError and no shares.
func (s Split) ComputeShares(amount float64, participants []string) (map[string]float64, error) {
	switch s.Type {
	case SplitEqual:
		return equalShares(amount, participants), nil
	case SplitPercent:
		return percentShares(amount, participants, s.Percentages)
	case SplitUnequal:
		return unequalShares(amount, participants, s.Amounts)
	default:
		return nil, fmt.Errorf("unsupported split type %q", s.Type)
	}
}

// equalShares rounds every share to cents. An empty participant list
// yields an empty mapping and the amount is not distributed.
func equalShares(amount float64, participants []string) map[string]float64 {
	shares := make(map[string]float64, len(participants))
	if len(participants) == 0 {
		return shares
	}
	share := Round2(amount / float64(len(participants)))
	for _, p := range participants {
		shares[p] = share
	}
	return shares
}

func percentShares(amount float64, participants []string, percentages map[string]float64) (map[string]float64, error) {
	total := orderedSum(participants, percentages)
	// Exact comparison: percentages must add up to precisely 100.
	if total != 100 {
		return nil, &ValidationError{
			Split:  SplitPercent,
			Reason: fmt.Sprintf("percentages must sum to 100, got %v", total),
		}
	}

	shares := make(map[string]float64, len(participants))
	for _, p := range participants {
		pct, ok := percentages[p]
		if !ok {
			return nil, fmt.Errorf("%w: no percentage for %q", ErrUnknownParticipant, p)
		}
		shares[p] = Round2(amount * pct / 100)
	}
	return shares, nil
}

// unequalShares returns the caller's amounts unchanged.
func unequalShares(amount float64, participants []string, amounts map[string]float64) (map[string]float64, error) {
	total := orderedSum(participants, amounts)
	if diff := total - amount; diff > Tolerance || diff < -Tolerance {
		return nil, &ValidationError{
			Split:  SplitUnequal,
			Reason: fmt.Sprintf("shares sum to %v, expense amount is %v", total, amount),
		}
	}

	for _, p := range participants {
		if _, ok := amounts[p]; !ok {
			return nil, fmt.Errorf("%w: no amount for %q", ErrUnknownParticipant, p)
		}
	}

	shares := make(map[string]float64, len(amounts))
	for p, a := range amounts {
		shares[p] = a
	}
	return shares, nil
}

// orderedSum adds the values of m for participants in order, then any
// remaining keys in sorted order. The result never depends on map iteration.
func orderedSum(participants []string, m map[string]float64) float64 {
	var total float64
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if v, ok := m[p]; ok && !seen[p] {
			total += v
			seen[p] = true
		}
	}
	rest := make([]string, 0, len(m)-len(seen))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		total += m[k]
	}
	return total
}

// Round2 rounds a money value to two decimal places. The exact binary value
// is rounded with ties to even, so 0.125 becomes 0.12 and 2.675 (stored as
// 2.67499...) becomes 2.67.
func Round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}
