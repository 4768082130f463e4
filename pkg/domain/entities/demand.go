package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FirstWeekIncrement decides the incremental demand of week 0, which has no predecessor
type FirstWeekIncrement string

const (
	// FirstWeekZero treats week 0 incremental demand as 0
	FirstWeekZero FirstWeekIncrement = "zero"
	// FirstWeekPinned copies the first real increment (week 1) into week 0
	FirstWeekPinned FirstWeekIncrement = "first-increment"
)

// ParseFirstWeekIncrement parses a FirstWeekIncrement value
func ParseFirstWeekIncrement(s string) (FirstWeekIncrement, error) {
	switch FirstWeekIncrement(s) {
	case FirstWeekZero, "":
		return FirstWeekZero, nil
	case FirstWeekPinned:
		return FirstWeekPinned, nil
	default:
		return FirstWeekZero, fmt.Errorf("invalid first week increment: %s (expected zero or first-increment)", s)
	}
}

// DemandForecast holds cumulative and incremental demand per product and week
type DemandForecast struct {
	Weeks       WeekIndex
	Cumulative  map[ProductID][]Quantity
	Incremental map[ProductID][]Quantity
}

// NewDemandForecast builds a forecast from cumulative demand, deriving the incremental series
func NewDemandForecast(weeks WeekIndex, cumulative map[ProductID][]Quantity, first FirstWeekIncrement) *DemandForecast {
	incremental := make(map[ProductID][]Quantity, len(cumulative))
	for p, series := range cumulative {
		incremental[p] = DeriveIncremental(series, first)
	}
	return &DemandForecast{
		Weeks:       weeks,
		Cumulative:  cumulative,
		Incremental: incremental,
	}
}

// DeriveIncremental returns the first difference of a cumulative series
func DeriveIncremental(cumulative []Quantity, first FirstWeekIncrement) []Quantity {
	inc := make([]Quantity, len(cumulative))
	for i := 1; i < len(cumulative); i++ {
		inc[i] = cumulative[i] - cumulative[i-1]
	}
	if first == FirstWeekPinned && len(inc) > 1 {
		inc[0] = inc[1]
	}
	return inc
}

// Products returns the forecast's products in sorted order
func (d *DemandForecast) Products() []ProductID {
	products := make([]ProductID, 0, len(d.Cumulative))
	for p := range d.Cumulative {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}

// CumulativeAt returns cumulative demand for a product at a week position
func (d *DemandForecast) CumulativeAt(p ProductID, week int) Quantity {
	series := d.Cumulative[p]
	if week < 0 || week >= len(series) {
		return 0
	}
	return series[week]
}

// IncrementalAt returns incremental demand for a product at a week position
func (d *DemandForecast) IncrementalAt(p ProductID, week int) Quantity {
	series := d.Incremental[p]
	if week < 0 || week >= len(series) {
		return 0
	}
	return series[week]
}

// SegmentDemand breaks one product's weekly demand down by segment
// (sales channel or reseller region). Segments keeps input order.
type SegmentDemand struct {
	Weeks    WeekIndex
	Segments []string
	Units    map[string][]decimal.Decimal
}

// NewSegmentDemand creates a SegmentDemand from integer units
func NewSegmentDemand(weeks WeekIndex, segments []string, units map[string][]int64) *SegmentDemand {
	d := &SegmentDemand{
		Weeks:    weeks,
		Segments: segments,
		Units:    make(map[string][]decimal.Decimal, len(units)),
	}
	for seg, series := range units {
		values := make([]decimal.Decimal, len(series))
		for i, v := range series {
			values[i] = decimal.NewFromInt(v)
		}
		d.Units[seg] = values
	}
	return d
}

// At returns the demand for a segment at a week position
func (d *SegmentDemand) At(segment string, week int) decimal.Decimal {
	series := d.Units[segment]
	if week < 0 || week >= len(series) {
		return decimal.Zero
	}
	return series[week]
}

// WeekTotal returns the demand summed over segments for a week position
func (d *SegmentDemand) WeekTotal(week int) decimal.Decimal {
	total := decimal.Zero
	for _, seg := range d.Segments {
		total = total.Add(d.At(seg, week))
	}
	return total
}
