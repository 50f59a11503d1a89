package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/calculator"
)

// splitNames splits a comma separated list, dropping blanks.
func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// parseAmount parses a money amount such as "12.50".
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.InexactFloat64(), nil
}

// parseShares parses "name=value" pairs separated by commas,
// e.g. "Alice=50,Bob=50".
func parseShares(s string) (map[string]float64, error) {
	shares := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid share %q (want name=value)", pair)
		}
		v, err := parseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("share for %s: %w", name, err)
		}
		shares[name] = v
	}
	return shares, nil
}

// money formats v with the currency symbol, e.g. "-₹30.00".
func money(currency string, v float64) string {
	d := decimal.NewFromFloat(calculator.Round2(v))
	if d.IsNegative() {
		return "-" + currency + d.Neg().StringFixed(2)
	}
	return currency + d.StringFixed(2)
}
