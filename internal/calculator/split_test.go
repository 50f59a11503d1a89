package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestComputeShares(t *testing.T) {
	tests := []struct {
		name         string
		split        Split
		amount       float64
		participants []string
		wantErr      bool
		validateFunc func(t *testing.T, shares map[string]float64)
	}{
		{
			name:         "equal split among three",
			split:        EqualSplit(),
			amount:       300.0,
			participants: []string{"Alice", "Bob", "Charlie"},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				for _, p := range []string{"Alice", "Bob", "Charlie"} {
					if shares[p] != 100.0 {
						t.Errorf("%s share = %v, want 100.0", p, shares[p])
					}
				}
			},
		},
		{
			name:         "equal split rounds each share to cents",
			split:        EqualSplit(),
			amount:       100.0,
			participants: []string{"Alice", "Bob", "Charlie"},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				// 33.333... rounds to 33.33 for everyone; the penny is not redistributed
				for p, share := range shares {
					if share != 33.33 {
						t.Errorf("%s share = %v, want 33.33", p, share)
					}
				}
			},
		},
		{
			name:         "equal split with no participants returns empty mapping",
			split:        EqualSplit(),
			amount:       50.0,
			participants: []string{},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if shares == nil {
					t.Fatal("expected empty, non-nil mapping")
				}
				if len(shares) != 0 {
					t.Errorf("expected no shares, got %v", shares)
				}
			},
		},
		{
			name:         "percent split",
			split:        PercentSplit(map[string]float64{"Alice": 50, "Bob": 30, "Charlie": 20}),
			amount:       250.0,
			participants: []string{"Alice", "Bob", "Charlie"},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				want := map[string]float64{"Alice": 125, "Bob": 75, "Charlie": 50}
				for p, w := range want {
					if math.Abs(shares[p]-w) > 1e-9 {
						t.Errorf("%s share = %v, want %v", p, shares[p], w)
					}
				}
			},
		},
		{
			name:         "percent split rounds to cents",
			split:        PercentSplit(map[string]float64{"Alice": 50, "Bob": 50}),
			amount:       10.01,
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				for p, share := range shares {
					if share != 5.01 && share != 5.0 {
						t.Errorf("%s share = %v, want a value rounded to cents", p, share)
					}
					if math.Abs(share*100-math.Round(share*100)) > 1e-6 {
						t.Errorf("%s share %v has more than two decimals", p, share)
					}
				}
			},
		},
		{
			name:         "percentages below 100 are rejected",
			split:        PercentSplit(map[string]float64{"Alice": 50, "Bob": 49.99}),
			amount:       100.0,
			participants: []string{"Alice", "Bob"},
			wantErr:      true,
		},
		{
			name:         "percentages above 100 are rejected",
			split:        PercentSplit(map[string]float64{"Alice": 60, "Bob": 41}),
			amount:       100.0,
			participants: []string{"Alice", "Bob"},
			wantErr:      true,
		},
		{
			name:         "unequal split returns amounts verbatim",
			split:        UnequalSplit(map[string]float64{"Alice": 10.333, "Bob": 19.667}),
			amount:       30.0,
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if shares["Alice"] != 10.333 || shares["Bob"] != 19.667 {
					t.Errorf("shares = %v, want unrounded caller amounts", shares)
				}
			},
		},
		{
			name:         "unequal split within a cent is accepted",
			split:        UnequalSplit(map[string]float64{"Alice": 50, "Bob": 49.995}),
			amount:       100.0,
			participants: []string{"Alice", "Bob"},
		},
		{
			name:         "unequal split off by more than a cent is rejected",
			split:        UnequalSplit(map[string]float64{"Alice": 50, "Bob": 49.5}),
			amount:       100.0,
			participants: []string{"Alice", "Bob"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := tt.split.ComputeShares(tt.amount, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Errorf("ComputeShares() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
				if shares != nil {
					t.Errorf("expected no shares on failure, got %v", shares)
				}
				return
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestEqualSplitSumWithinRoundingSlack(t *testing.T) {
	amounts := []float64{0.01, 1, 10, 99.99, 100, 123.45, 1000, 7777.77}
	for n := 1; n <= 9; n++ {
		participants := make([]string, n)
		for i := range participants {
			participants[i] = string(rune('A' + i))
		}
		for _, amount := range amounts {
			shares, err := EqualSplit().ComputeShares(amount, participants)
			if err != nil {
				t.Fatalf("ComputeShares(%v, %d) failed: %v", amount, n, err)
			}
			want := Round2(amount / float64(n))
			var sum float64
			for p, share := range shares {
				if share != want {
					t.Errorf("amount %v / %d: %s share = %v, want %v", amount, n, p, share, want)
				}
				sum += share
			}
			if math.Abs(sum-amount) > float64(n)*Tolerance {
				t.Errorf("amount %v / %d: shares sum to %v", amount, n, sum)
			}
		}
	}
}

func TestComputeSharesRoundsTiesToEven(t *testing.T) {
	tests := []struct {
		name         string
		split        Split
		amount       float64
		participants []string
		want         map[string]float64
	}{
		{
			name:         "equal split of a quarter",
			split:        EqualSplit(),
			amount:       0.25,
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 0.12, "B": 0.12},
		},
		{
			name:         "half of 5.35",
			split:        PercentSplit(map[string]float64{"A": 50, "B": 50}),
			amount:       5.35,
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 2.67, "B": 2.67},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := tt.split.ComputeShares(tt.amount, tt.participants)
			if err != nil {
				t.Fatalf("ComputeShares() failed: %v", err)
			}
			for p, w := range tt.want {
				if shares[p] != w {
					t.Errorf("%s share = %v, want %v", p, shares[p], w)
				}
			}
		})
	}
}

func TestComputeSharesIsStable(t *testing.T) {
	tests := []struct {
		name         string
		split        Split
		participants []string
	}{
		{
			name:         "percent with tiny shares",
			split:        PercentSplit(map[string]float64{"A": 0.01, "B": 0.04, "C": 99.95}),
			participants: []string{"A", "B", "C"},
		},
		{
			name:         "percent with tenths",
			split:        PercentSplit(map[string]float64{"A": 0.1, "B": 0.2, "C": 99.7}),
			participants: []string{"A", "B", "C"},
		},
		{
			name:         "percent with a key outside the participants",
			split:        PercentSplit(map[string]float64{"A": 0.01, "B": 0.04, "C": 99.95, "Z": 0}),
			participants: []string{"A", "B", "C"},
		},
		{
			name:         "unequal amounts",
			split:        UnequalSplit(map[string]float64{"A": 0.1, "B": 0.2, "C": 0.3, "D": 99.39}),
			participants: []string{"A", "B", "C", "D"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, firstErr := tt.split.ComputeShares(100, tt.participants)
			for i := 0; i < 200; i++ {
				shares, err := tt.split.ComputeShares(100, tt.participants)
				if (err != nil) != (firstErr != nil) {
					t.Fatalf("call %d: error = %v, first call error = %v", i, err, firstErr)
				}
				for p, w := range first {
					if shares[p] != w {
						t.Fatalf("call %d: %s share = %v, first call gave %v", i, p, shares[p], w)
					}
				}
			}
		})
	}
}

func TestComputeSharesMissingParticipant(t *testing.T) {
	splits := []Split{
		PercentSplit(map[string]float64{"Alice": 100}),
		UnequalSplit(map[string]float64{"Alice": 20}),
	}
	for _, s := range splits {
		t.Run(string(s.Type), func(t *testing.T) {
			_, err := s.ComputeShares(20, []string{"Alice", "Bob"})
			if !errors.Is(err, ErrUnknownParticipant) {
				t.Errorf("expected ErrUnknownParticipant, got %v", err)
			}
		})
	}
}

func TestComputeSharesUnknownType(t *testing.T) {
	_, err := Split{Type: "weighted"}.ComputeShares(10, []string{"Alice"})
	if err == nil {
		t.Fatal("expected error for unsupported split type")
	}
}

func TestParseSplitType(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitType
		wantErr bool
	}{
		{"equal", SplitEqual, false},
		{" Percent ", SplitPercent, false},
		{"UNEQUAL", SplitUnequal, false},
		{"shares", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSplitType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSplitType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSplitType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{-12.345678, -12.35},
		{100, 100},
		{0.004, 0},
		{0.125, 0.12},
		{0.375, 0.38},
		{2.675, 2.67},
		{1.005, 1},
		{-0.125, -0.12},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
