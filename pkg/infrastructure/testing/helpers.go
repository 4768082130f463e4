package testing

import (
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/memory"
)

// SampleScenarioName is the name of the Superman Plus launch scenario
const SampleScenarioName = "superman-plus"

// mustWeeks is a helper for tests - panics on validation error
func mustWeeks(labels ...string) entities.WeekIndex {
	weeks, err := entities.NewWeekIndex(labels...)
	if err != nil {
		panic(err)
	}
	return weeks
}

// mustProduct is a helper for tests - panics on validation error
func mustProduct(id string, kind entities.DemandKind) entities.Product {
	product, err := entities.NewProduct(entities.ProductID(id), kind)
	if err != nil {
		panic(err)
	}
	return *product
}

// BuildSupermanPlusScenario builds the four-week Superman Plus launch scenario:
// 1200 units of shared material across three products, with Superman Plus
// split over three channels and its reseller channel over three regions.
func BuildSupermanPlusScenario() *entities.Scenario {
	weeks := mustWeeks("wk2", "wk3", "wk4", "wk5")

	demand := entities.NewDemandForecast(weeks, map[entities.ProductID][]entities.Quantity{
		"Superman":     {85, 100, 110, 120},
		"SupermanPlus": {85, 120, 150, 175},
		"SupermanMini": {40, 60, 70, 75},
	}, entities.FirstWeekZero)

	return &entities.Scenario{
		Name:   SampleScenarioName,
		Weeks:  weeks,
		Supply: entities.NewSupplyPlan(weeks, []entities.Quantity{230, 270, 320, 380}),
		Products: []entities.Product{
			mustProduct("Superman", entities.HardDemand),
			mustProduct("SupermanPlus", entities.SoftDemand),
			mustProduct("SupermanMini", entities.HardDemand),
		},
		Base: entities.BaseBuild{
			"Superman":     70,
			"SupermanPlus": 70,
			"SupermanMini": 60,
		},
		Demand:       demand,
		FocusProduct: "SupermanPlus",
		ChannelDemand: entities.NewSegmentDemand(weeks, []string{"Online", "Retail", "Reseller"}, map[string][]int64{
			"Online":   {20, 30, 40, 50},
			"Retail":   {15, 25, 30, 35},
			"Reseller": {50, 65, 80, 90},
		}),
		ChannelPriority: []string{"Online", "Retail", "Reseller"},
		PartnerChannel:  "Reseller",
		RegionDemand: entities.NewSegmentDemand(weeks, []string{"AMR", "Europe", "PAC"}, map[string][]int64{
			"AMR":    {20, 25, 30, 35},
			"Europe": {5, 10, 15, 15},
			"PAC":    {25, 30, 35, 40},
		}),
	}
}

// BuildSupermanPlusRepository returns a scenario repository holding the sample scenario
func BuildSupermanPlusRepository() *memory.ScenarioRepository {
	repo := memory.NewScenarioRepository()
	if err := repo.SaveScenario(BuildSupermanPlusScenario()); err != nil {
		panic(err)
	}
	return repo
}
