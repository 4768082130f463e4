package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
)

// ScenarioValidator checks that a scenario's tables line up before any model is built
type ScenarioValidator struct{}

// NewScenarioValidator creates a new scenario validator
func NewScenarioValidator() *ScenarioValidator {
	return &ScenarioValidator{}
}

// ValidationResult contains the results of scenario validation
type ValidationResult struct {
	// ShapeProblems are key-set mismatches between tables
	ShapeProblems []string
	// ValueProblems are well-shaped tables holding unusable values
	ValueProblems []string
}

// Valid reports whether no problems were found
func (r *ValidationResult) Valid() bool {
	return len(r.ShapeProblems) == 0 && len(r.ValueProblems) == 0
}

// Err converts the result to an error. Shape problems take precedence.
func (r *ValidationResult) Err() error {
	if len(r.ShapeProblems) > 0 {
		return &domain.InputShapeMismatchError{Problems: r.ShapeProblems}
	}
	if len(r.ValueProblems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(r.ValueProblems, "; "))
	}
	return nil
}

// Validate runs every check and returns the combined error, if any
func (v *ScenarioValidator) Validate(sc *entities.Scenario) error {
	return v.ValidateScenario(sc).Err()
}

// ValidateScenario performs every shape and value check on a scenario
func (v *ScenarioValidator) ValidateScenario(sc *entities.Scenario) *ValidationResult {
	result := &ValidationResult{
		ShapeProblems: make([]string, 0),
		ValueProblems: make([]string, 0),
	}
	shape := func(format string, args ...interface{}) {
		result.ShapeProblems = append(result.ShapeProblems, fmt.Sprintf(format, args...))
	}
	value := func(format string, args ...interface{}) {
		result.ValueProblems = append(result.ValueProblems, fmt.Sprintf(format, args...))
	}

	if sc == nil {
		shape("scenario is missing")
		return result
	}
	if sc.Weeks.Len() == 0 {
		shape("scenario has no weeks")
		return result
	}
	weeks := sc.Weeks.Len()

	// Products
	products := make(map[entities.ProductID]bool, len(sc.Products))
	if len(sc.Products) == 0 {
		shape("scenario has no products")
	}
	for _, p := range sc.Products {
		if p.ID == "" {
			shape("product with empty id")
			continue
		}
		if products[p.ID] {
			shape("product %s is listed twice", p.ID)
		}
		products[p.ID] = true
	}

	// Supply
	if sc.Supply == nil {
		shape("supply plan is missing")
	} else {
		if !sc.Supply.Weeks.Equal(sc.Weeks) {
			shape("supply weeks %v do not match scenario weeks %v", sc.Supply.Weeks, sc.Weeks)
		}
		if len(sc.Supply.Units) != weeks {
			shape("supply covers %d weeks, expected %d", len(sc.Supply.Units), weeks)
		}
		for i, u := range sc.Supply.Units {
			if u < 0 {
				value("supply at week %d is negative (%d)", i, u)
			}
		}
	}

	// Base build
	for p, units := range sc.Base {
		if !products[p] {
			shape("base build lists unknown product %s", p)
		}
		if units < 0 {
			value("base build for %s is negative (%d)", p, units)
		}
	}
	for p := range products {
		if _, ok := sc.Base[p]; !ok {
			shape("base build is missing product %s", p)
		}
	}

	// Demand forecast
	if sc.Demand == nil {
		shape("demand forecast is missing")
	} else {
		v.checkDemand(sc, products, shape, value)
	}

	if !products[sc.FocusProduct] {
		shape("focus product %q is not a scenario product", sc.FocusProduct)
	}

	// Channel and region breakdowns
	channels := v.checkSegments("channel", sc.Weeks, sc.ChannelDemand, shape, value)
	seen := make(map[string]bool, len(sc.ChannelPriority))
	for _, c := range sc.ChannelPriority {
		if !channels[c] {
			shape("channel priority lists unknown channel %q", c)
		}
		if seen[c] {
			shape("channel priority lists %q twice", c)
		}
		seen[c] = true
	}
	if sc.ChannelDemand != nil && !channels[sc.PartnerChannel] {
		shape("partner channel %q is not a demand channel", sc.PartnerChannel)
	}
	v.checkSegments("region", sc.Weeks, sc.RegionDemand, shape, value)

	sort.Strings(result.ShapeProblems)
	sort.Strings(result.ValueProblems)
	return result
}

func (v *ScenarioValidator) checkDemand(
	sc *entities.Scenario,
	products map[entities.ProductID]bool,
	shape, value func(string, ...interface{}),
) {
	d := sc.Demand
	weeks := sc.Weeks.Len()
	if !d.Weeks.Equal(sc.Weeks) {
		shape("demand weeks %v do not match scenario weeks %v", d.Weeks, sc.Weeks)
	}

	for p, series := range d.Cumulative {
		if !products[p] {
			shape("demand lists unknown product %s", p)
		}
		if len(series) != weeks {
			shape("demand for %s covers %d weeks, expected %d", p, len(series), weeks)
			continue
		}
		for i, q := range series {
			if q < 0 {
				value("cumulative demand for %s at week %d is negative (%d)", p, i, q)
			}
			if i > 0 && q < series[i-1] {
				value("cumulative demand for %s decreases at week %d", p, i)
			}
		}

		inc, ok := d.Incremental[p]
		if !ok {
			shape("incremental demand is missing product %s", p)
			continue
		}
		if len(inc) != weeks {
			shape("incremental demand for %s covers %d weeks, expected %d", p, len(inc), weeks)
			continue
		}
		for i := 1; i < weeks; i++ {
			if inc[i] != series[i]-series[i-1] {
				value("incremental demand for %s at week %d is %d, cumulative implies %d", p, i, inc[i], series[i]-series[i-1])
			}
		}
	}
	for p := range products {
		if _, ok := d.Cumulative[p]; !ok {
			shape("demand is missing product %s", p)
		}
	}
}

// checkSegments validates a segment breakdown and returns its segment set
func (v *ScenarioValidator) checkSegments(
	kind string,
	weeks entities.WeekIndex,
	d *entities.SegmentDemand,
	shape, value func(string, ...interface{}),
) map[string]bool {
	segments := make(map[string]bool)
	if d == nil {
		shape("%s demand is missing", kind)
		return segments
	}
	if !d.Weeks.Equal(weeks) {
		shape("%s demand weeks %v do not match scenario weeks %v", kind, d.Weeks, weeks)
	}
	if len(d.Segments) == 0 {
		shape("%s demand has no %ss", kind, kind)
	}

	for _, s := range d.Segments {
		if segments[s] {
			shape("%s %q is listed twice", kind, s)
		}
		segments[s] = true

		series, ok := d.Units[s]
		if !ok {
			shape("%s demand is missing %s %q", kind, kind, s)
			continue
		}
		if len(series) != weeks.Len() {
			shape("%s demand for %q covers %d weeks, expected %d", kind, s, len(series), weeks.Len())
		}
		for i, q := range series {
			if q.IsNegative() {
				value("%s demand for %q at week %d is negative (%s)", kind, s, i, q)
			}
		}
	}
	for s := range d.Units {
		if !segments[s] {
			shape("%s demand lists undeclared %s %q", kind, kind, s)
		}
	}
	return segments
}
