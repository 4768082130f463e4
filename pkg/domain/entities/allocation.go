package entities

import (
	"github.com/shopspring/decimal"
)

// ProductAllocation is the stage-1 result: integer units per product and week
type ProductAllocation struct {
	Weeks    WeekIndex
	Products []ProductID
	Units    map[ProductID][]Quantity
	// Shortfall holds the solved coverage slack per product and week.
	// Products without a slack variable have no entry.
	Shortfall map[ProductID][]float64
}

// NewProductAllocation creates an empty ProductAllocation for the given products
func NewProductAllocation(weeks WeekIndex, products []ProductID) *ProductAllocation {
	units := make(map[ProductID][]Quantity, len(products))
	for _, p := range products {
		units[p] = make([]Quantity, len(weeks))
	}
	return &ProductAllocation{
		Weeks:     weeks,
		Products:  products,
		Units:     units,
		Shortfall: make(map[ProductID][]float64),
	}
}

// Series returns a copy of one product's weekly allocation
func (a *ProductAllocation) Series(p ProductID) []Quantity {
	out := make([]Quantity, len(a.Weeks))
	copy(out, a.Units[p])
	return out
}

// CumulativeAt returns the allocation to date for a product through a week position
func (a *ProductAllocation) CumulativeAt(p ProductID, week int) Quantity {
	var total Quantity
	series := a.Units[p]
	for i := 0; i <= week && i < len(series); i++ {
		total += series[i]
	}
	return total
}

// WeekTotal returns the allocation summed over products for a week position
func (a *ProductAllocation) WeekTotal(week int) Quantity {
	var total Quantity
	for _, p := range a.Products {
		if week < len(a.Units[p]) {
			total += a.Units[p][week]
		}
	}
	return total
}

// Total returns the allocation summed over all products and weeks
func (a *ProductAllocation) Total() Quantity {
	var total Quantity
	for i := range a.Weeks {
		total += a.WeekTotal(i)
	}
	return total
}

// ShortfallAt returns the solved shortfall for a product at a week position
func (a *ProductAllocation) ShortfallAt(p ProductID, week int) float64 {
	series, ok := a.Shortfall[p]
	if !ok || week < 0 || week >= len(series) {
		return 0
	}
	return series[week]
}

// SegmentAllocation is a stage-2 or stage-3 result: real-valued units per segment and week
type SegmentAllocation struct {
	Weeks    WeekIndex
	Segments []string
	Units    map[string][]decimal.Decimal
}

// NewSegmentAllocation creates a zeroed SegmentAllocation
func NewSegmentAllocation(weeks WeekIndex, segments []string) *SegmentAllocation {
	units := make(map[string][]decimal.Decimal, len(segments))
	for _, s := range segments {
		series := make([]decimal.Decimal, len(weeks))
		for i := range series {
			series[i] = decimal.Zero
		}
		units[s] = series
	}
	return &SegmentAllocation{Weeks: weeks, Segments: segments, Units: units}
}

// At returns the allocation for a segment at a week position
func (a *SegmentAllocation) At(segment string, week int) decimal.Decimal {
	series := a.Units[segment]
	if week < 0 || week >= len(series) {
		return decimal.Zero
	}
	return series[week]
}

// Series returns a copy of one segment's weekly allocation
func (a *SegmentAllocation) Series(segment string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a.Weeks))
	for i := range out {
		out[i] = a.At(segment, i)
	}
	return out
}

// WeekTotal returns the allocation summed over segments for a week position
func (a *SegmentAllocation) WeekTotal(week int) decimal.Decimal {
	total := decimal.Zero
	for _, s := range a.Segments {
		total = total.Add(a.At(s, week))
	}
	return total
}

// QuantitySeries converts integer units to decimals for handing to a downstream stage
func QuantitySeries(units []Quantity) []decimal.Decimal {
	out := make([]decimal.Decimal, len(units))
	for i, u := range units {
		out[i] = decimal.NewFromInt(int64(u))
	}
	return out
}
