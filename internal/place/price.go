package place

import "strings"

// priceLevelEntry maps one provider price category to its ordinal level and
// display symbol.
type priceLevelEntry struct {
	level  int
	symbol string
}

// priceLevels is the fixed category table. Defined once and read-only; the
// provider's PRICE_LEVEL_ prefix is stripped before lookup so both bare and
// prefixed forms resolve.
var priceLevels = map[string]priceLevelEntry{
	"FREE":           {level: 0, symbol: "$"},
	"INEXPENSIVE":    {level: 1, symbol: "$"},
	"MODERATE":       {level: 2, symbol: "$$"},
	"EXPENSIVE":      {level: 3, symbol: "$$$"},
	"VERY_EXPENSIVE": {level: 4, symbol: "$$$$"},
}

// UnknownPriceSymbol is rendered when the candidate's price category is absent
// or unrecognized.
const UnknownPriceSymbol = "–"

// normalizePriceCategory uppercases the category and strips the provider's
// PRICE_LEVEL_ prefix.
func normalizePriceCategory(category string) string {
	c := strings.ToUpper(strings.TrimSpace(category))
	return strings.TrimPrefix(c, "PRICE_LEVEL_")
}

// LevelOf maps a provider price category to its ordinal level (0-4).
// Returns nil for absent or unrecognized categories.
func LevelOf(category *string) *int {
	if category == nil {
		return nil
	}
	entry, ok := priceLevels[normalizePriceCategory(*category)]
	if !ok {
		return nil
	}
	level := entry.level
	return &level
}

// SymbolOf maps a provider price category to a display symbol ("$".."$$$$").
// Absent or unrecognized categories render as UnknownPriceSymbol.
func SymbolOf(category *string) string {
	if category == nil {
		return UnknownPriceSymbol
	}
	entry, ok := priceLevels[normalizePriceCategory(*category)]
	if !ok {
		return UnknownPriceSymbol
	}
	return entry.symbol
}

// BudgetToLevels maps a monetary budget to the set of price levels it plausibly
// covers. The tiers are a heuristic calibrated against one reference currency
// and applied regardless of the stated currency; no conversion is performed.
//
// Returns nil when the budget is absent or non-positive, meaning "no budget
// constraint".
func BudgetToLevels(b *Budget) []int {
	if b == nil || b.Amount <= 0 {
		return nil
	}
	switch {
	case b.Amount <= 50:
		return []int{0, 1}
	case b.Amount <= 100:
		return []int{1, 2}
	case b.Amount <= 200:
		return []int{2, 3}
	default:
		return []int{3, 4}
	}
}
