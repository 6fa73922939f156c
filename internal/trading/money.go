package trading

import "github.com/shopspring/decimal"

// round2 rounds a monetary or share value to 2 decimal places, the
// resolution used at the persistence and response boundary.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// weightedAverage merges a buy into an existing position at full
// precision: (old_qty*old_avg + amount) / (old_qty + shares).
func weightedAverage(oldQty, oldAvg, amount, shares float64) float64 {
	totalValue := decimal.NewFromFloat(oldQty).
		Mul(decimal.NewFromFloat(oldAvg)).
		Add(decimal.NewFromFloat(amount))
	totalShares := decimal.NewFromFloat(oldQty).Add(decimal.NewFromFloat(shares))
	f, _ := totalValue.Div(totalShares).Float64()
	return f
}
