package entities

// Scenario bundles every input table of one allocation run. It is built once
// from literal data and not mutated afterwards.
type Scenario struct {
	Name     string
	Weeks    WeekIndex
	Supply   *SupplyPlan
	Products []Product
	Base     BaseBuild
	Demand   *DemandForecast

	// FocusProduct is the product whose allocation is split across channels
	FocusProduct ProductID
	// ChannelDemand breaks FocusProduct's demand down by sales channel
	ChannelDemand *SegmentDemand
	// ChannelPriority lists channels from highest to lowest priority
	ChannelPriority []string
	// PartnerChannel is the channel whose allocation is split across regions
	PartnerChannel string
	// RegionDemand breaks PartnerChannel's demand down by region
	RegionDemand *SegmentDemand
}

// ProductIDs returns the product ids in scenario order
func (s *Scenario) ProductIDs() []ProductID {
	ids := make([]ProductID, len(s.Products))
	for i, p := range s.Products {
		ids[i] = p.ID
	}
	return ids
}

// Product looks up a product by id
func (s *Scenario) Product(id ProductID) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
