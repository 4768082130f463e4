package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/application/services/orchestration"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/events"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

func main() {
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	// Set up the Superman Plus launch
	sc, err := buildLaunchScenario()
	if err != nil {
		fmt.Printf("❌ Invalid scenario: %v\n", err)
		return
	}

	store := events.NewInMemoryEventStore(logger)
	pipeline, err := orchestration.NewAllocationPipeline(
		solver.NewSimplexSolver(solver.DefaultOptions()),
		allocation.DefaultPolicy(),
		store,
		logger,
	)
	if err != nil {
		fmt.Printf("❌ Pipeline setup failed: %v\n", err)
		return
	}

	fmt.Println("🚀 Allocating launch supply...")
	fmt.Printf("Supply: %d units over %d weeks\n", sc.Supply.Total(), sc.Weeks.Len())
	fmt.Println()

	run, err := pipeline.Run(ctx, sc)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}

	fmt.Println("📊 Product Allocation:")
	for _, p := range run.Products.Allocation.Products {
		fmt.Printf("  %-14s", p)
		for _, q := range run.Products.Allocation.Series(p) {
			fmt.Printf(" %5d", q)
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Printf("🛒 %s Channel Allocation:\n", sc.FocusProduct)
	printSegments(run.Channels.Allocation)

	fmt.Printf("🌍 %s Region Allocation:\n", sc.PartnerChannel)
	printSegments(run.Regions.Allocation)

	recorded, _ := store.ReadEvents(run.RunID, 0)
	fmt.Printf("📝 %d events recorded for run %s\n", len(recorded), run.RunID)
}

func printSegments(a *entities.SegmentAllocation) {
	for _, seg := range a.Segments {
		fmt.Printf("  %-14s", seg)
		for _, q := range a.Series(seg) {
			fmt.Printf(" %8s", q.StringFixed(1))
		}
		fmt.Println()
	}
	fmt.Println()
}

// buildLaunchScenario sets up three products sharing four weeks of material,
// with half-unit channel demand to show fractional segment allocation
func buildLaunchScenario() (*entities.Scenario, error) {
	weeks, err := entities.NewWeekIndex("wk2", "wk3", "wk4", "wk5")
	if err != nil {
		return nil, err
	}

	products := make([]entities.Product, 0, 3)
	for _, spec := range []struct {
		id   entities.ProductID
		kind entities.DemandKind
	}{
		{"Superman", entities.HardDemand},
		{"SupermanPlus", entities.SoftDemand},
		{"SupermanMini", entities.HardDemand},
	} {
		product, err := entities.NewProduct(spec.id, spec.kind)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	half := decimal.NewFromFloat(0.5)
	channels := entities.NewSegmentDemand(weeks, []string{"Online", "Retail", "Reseller"}, map[string][]int64{
		"Online":   {20, 30, 40, 50},
		"Retail":   {15, 25, 30, 35},
		"Reseller": {50, 65, 80, 90},
	})
	for i := range channels.Units["Retail"] {
		channels.Units["Retail"][i] = channels.Units["Retail"][i].Add(half)
	}

	return &entities.Scenario{
		Name:     "superman-plus-example",
		Weeks:    weeks,
		Supply:   entities.NewSupplyPlan(weeks, []entities.Quantity{230, 270, 320, 380}),
		Products: products,
		Base: entities.BaseBuild{
			"Superman":     70,
			"SupermanPlus": 70,
			"SupermanMini": 60,
		},
		Demand: entities.NewDemandForecast(weeks, map[entities.ProductID][]entities.Quantity{
			"Superman":     {85, 100, 110, 120},
			"SupermanPlus": {85, 120, 150, 175},
			"SupermanMini": {40, 60, 70, 75},
		}, entities.FirstWeekZero),
		FocusProduct:    "SupermanPlus",
		ChannelDemand:   channels,
		ChannelPriority: []string{"Online", "Retail", "Reseller"},
		PartnerChannel:  "Reseller",
		RegionDemand: entities.NewSegmentDemand(weeks, []string{"AMR", "Europe", "PAC"}, map[string][]int64{
			"AMR":    {20, 25, 30, 35},
			"Europe": {5, 10, 15, 15},
			"PAC":    {25, 30, 35, 40},
		}),
	}, nil
}
