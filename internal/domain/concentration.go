package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Concentration is the parsed form of a catalog concentration label such as
// "50mg/ml". Value is the amount of Unit per millilitre.
type Concentration struct {
	Value decimal.Decimal
	Unit  string
}

// concentrationPattern accepts "<number><unit>/ml" with optional spacing,
// case-insensitive. The denominator is always millilitres.
var concentrationPattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-z]+)\s*/\s*ml\s*$`)

// ParseConcentration parses a concentration label. It fails with a
// CalculationError when the label does not match the grammar or carries a
// non-positive value.
func ParseConcentration(raw string) (Concentration, error) {
	m := concentrationPattern.FindStringSubmatch(raw)
	if m == nil {
		return Concentration{}, NewCalculationError("malformed concentration %q: expected \"<number><unit>/ml\"", raw)
	}

	value, err := decimal.NewFromString(m[1])
	if err != nil {
		return Concentration{}, NewCalculationError("malformed concentration %q: %v", raw, err)
	}
	if !value.IsPositive() {
		return Concentration{}, NewCalculationError("concentration %q must be positive", raw)
	}

	return Concentration{
		Value: value,
		Unit:  strings.ToLower(m[2]),
	}, nil
}

// MatchesUnit compares unit against the concentration unit,
// case-insensitively. Units are never auto-converted.
func (c Concentration) MatchesUnit(unit string) bool {
	return c.Unit == strings.ToLower(strings.TrimSpace(unit))
}

func (c Concentration) String() string {
	return c.Value.String() + c.Unit + "/ml"
}
