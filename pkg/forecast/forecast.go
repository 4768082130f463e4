// Package forecast derives a new product's regional weekly demand from two
// predecessor products: a per-region price elasticity, a week-label
// seasonality factor and the newer predecessor's weekly sales curve.
package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/domain/entities"
)

// Forecast is a rounded regional weekly unit forecast
type Forecast struct {
	Product    string
	Weeks      []string
	Regions    []string
	Elasticity map[string]decimal.Decimal
	Multiplier map[string]decimal.Decimal
	Units      map[string][]int64
}

// PriceElasticity is the ratio of relative demand change to relative price
// change between the reference and the baseline product, per region.
func PriceElasticity(p *Params) map[string]decimal.Decimal {
	refPrice := decimal.NewFromFloat(p.Reference.Price)
	priceChange := decimal.NewFromFloat(p.Baseline.Price).Sub(refPrice).Div(refPrice)

	out := make(map[string]decimal.Decimal, len(p.Regions))
	for _, region := range p.Regions {
		refDemand := decimal.NewFromInt(sum(p.Reference.Sales[region]))
		demandChange := decimal.NewFromInt(sum(p.Baseline.Sales[region])).Sub(refDemand).Div(refDemand)
		out[region] = demandChange.Div(priceChange)
	}
	return out
}

// SeasonalityFactor returns the factor for a week label, 1 when unlisted
func SeasonalityFactor(seasonality map[string]float64, week string) decimal.Decimal {
	if f, ok := seasonality[week]; ok {
		return decimal.NewFromFloat(f)
	}
	return decimal.NewFromInt(1)
}

// Build computes the forecast. Each week's value is the baseline's sales in the
// same position scaled by seasonality and the region's price multiplier
// 1 + elasticity * (new price - baseline price) / baseline price.
func Build(p *Params) (*Forecast, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast params: %w", err)
	}
	seasonality := p.Seasonality
	if seasonality == nil {
		seasonality = DefaultSeasonality()
	}

	basePrice := decimal.NewFromFloat(p.Baseline.Price)
	newPriceChange := decimal.NewFromFloat(p.NewPrice).Sub(basePrice).Div(basePrice)
	elasticity := PriceElasticity(p)

	f := &Forecast{
		Product:    p.Product,
		Weeks:      append([]string(nil), p.Weeks...),
		Regions:    append([]string(nil), p.Regions...),
		Elasticity: elasticity,
		Multiplier: make(map[string]decimal.Decimal, len(p.Regions)),
		Units:      make(map[string][]int64, len(p.Regions)),
	}

	one := decimal.NewFromInt(1)
	for _, region := range p.Regions {
		multiplier := one.Add(elasticity[region].Mul(newPriceChange))
		f.Multiplier[region] = multiplier

		series := make([]int64, len(p.Weeks))
		for i, week := range p.Weeks {
			value := decimal.NewFromInt(p.Baseline.Sales[region][i]).
				Mul(SeasonalityFactor(seasonality, week)).
				Mul(multiplier)
			series[i] = value.RoundBank(0).IntPart()
		}
		f.Units[region] = series
	}

	return f, nil
}

// Cumulative returns the running total of a weekly series
func Cumulative(series []int64) []int64 {
	out := make([]int64, len(series))
	var total int64
	for i, v := range series {
		total += v
		out[i] = total
	}
	return out
}

// WeekTotals sums all regions per week
func (f *Forecast) WeekTotals() []int64 {
	totals := make([]int64, len(f.Weeks))
	for _, region := range f.Regions {
		for i, v := range f.Units[region] {
			totals[i] += v
		}
	}
	return totals
}

// SegmentDemand converts the forecast into region demand for the allocation engine
func (f *Forecast) SegmentDemand() (*entities.SegmentDemand, error) {
	weeks, err := entities.NewWeekIndex(f.Weeks...)
	if err != nil {
		return nil, err
	}
	return entities.NewSegmentDemand(weeks, f.Regions, f.Units), nil
}

// WriteCSV writes one row per week with a column per region
func (f *Forecast) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := append([]string{"week"}, f.Regions...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, week := range f.Weeks {
		row := []string{week}
		for _, region := range f.Regions {
			row = append(row, strconv.FormatInt(f.Units[region][i], 10))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func sum(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
