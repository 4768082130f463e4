package entities

// SupplyPlan holds the material units available per week
type SupplyPlan struct {
	Weeks WeekIndex
	Units []Quantity
}

// NewSupplyPlan creates a SupplyPlan. Shape checks are left to the scenario validator.
func NewSupplyPlan(weeks WeekIndex, units []Quantity) *SupplyPlan {
	return &SupplyPlan{Weeks: weeks, Units: units}
}

// Total returns the supply summed over the horizon
func (s *SupplyPlan) Total() Quantity {
	var total Quantity
	for _, u := range s.Units {
		total += u
	}
	return total
}

// At returns the supply for a week position
func (s *SupplyPlan) At(week int) Quantity {
	if week < 0 || week >= len(s.Units) {
		return 0
	}
	return s.Units[week]
}
