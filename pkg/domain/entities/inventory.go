package entities

import "math"

// InventoryPosition is the end-of-week stock picture for one product
type InventoryPosition struct {
	ProductID        ProductID
	Week             WeekLabel
	CumulativeBuild  Quantity
	CumulativeDemand Quantity
	OnHand           Quantity
	// WeeksOfSupply is OnHand divided by the lookahead demand rate; +Inf when the rate is 0.
	WeeksOfSupply float64
}

// NewInventoryPosition computes on-hand and weeks of supply for one product and week
func NewInventoryPosition(
	productID ProductID,
	week WeekLabel,
	cumulativeAllocation Quantity,
	baseBuild Quantity,
	cumulativeDemand Quantity,
	lookaheadRate float64,
) InventoryPosition {
	build := cumulativeAllocation + baseBuild
	onHand := build - cumulativeDemand

	wos := math.Inf(1)
	if lookaheadRate > 0 {
		wos = float64(onHand) / lookaheadRate
	}

	return InventoryPosition{
		ProductID:        productID,
		Week:             week,
		CumulativeBuild:  build,
		CumulativeDemand: cumulativeDemand,
		OnHand:           onHand,
		WeeksOfSupply:    wos,
	}
}
