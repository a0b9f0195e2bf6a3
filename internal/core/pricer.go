package core

import "math"

// Price looks up the parsed action in the catalog and computes the line total.
func Price(p ParsedAction, c *Catalog) (PricedLine, error) {
	unit, ok := c.Lookup(p.ActionName)
	if !ok {
		return PricedLine{}, &PriceFailure{Reason: UnknownAction, ActionName: p.ActionName}
	}
	if p.Quantity > math.MaxInt64/unit {
		return PricedLine{}, &PriceFailure{Reason: TotalOverflow, ActionName: p.ActionName}
	}
	return PricedLine{UnitPrice: unit, Total: p.Quantity * unit}, nil
}
