package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeriveIncremental(t *testing.T) {
	cumulative := []Quantity{85, 120, 150, 175}

	zero := DeriveIncremental(cumulative, FirstWeekZero)
	expected := []Quantity{0, 35, 30, 25}
	for i := range expected {
		if zero[i] != expected[i] {
			t.Errorf("week %d: expected %d, got %d", i, expected[i], zero[i])
		}
	}

	pinned := DeriveIncremental(cumulative, FirstWeekPinned)
	if pinned[0] != 35 {
		t.Errorf("Expected pinned first increment 35, got %d", pinned[0])
	}
}

func TestDemandForecast_Lookups(t *testing.T) {
	weeks, _ := NewWeekIndex("wk2", "wk3", "wk4", "wk5")
	forecast := NewDemandForecast(weeks, map[ProductID][]Quantity{
		"Superman":     {85, 100, 110, 120},
		"SupermanMini": {40, 60, 70, 75},
	}, FirstWeekZero)

	products := forecast.Products()
	if len(products) != 2 || products[0] != "Superman" {
		t.Errorf("Expected sorted products, got %v", products)
	}
	if forecast.CumulativeAt("Superman", 2) != 110 {
		t.Errorf("Expected cumulative 110, got %d", forecast.CumulativeAt("Superman", 2))
	}
	if forecast.IncrementalAt("SupermanMini", 1) != 20 {
		t.Errorf("Expected incremental 20, got %d", forecast.IncrementalAt("SupermanMini", 1))
	}
	if forecast.IncrementalAt("Unknown", 1) != 0 {
		t.Error("Expected zero for unknown product")
	}
}

func TestSegmentDemand_WeekTotal(t *testing.T) {
	weeks, _ := NewWeekIndex("wk2", "wk3")
	demand := NewSegmentDemand(weeks, []string{"Online", "Retail", "Reseller"}, map[string][]int64{
		"Online":   {20, 30},
		"Retail":   {15, 25},
		"Reseller": {50, 65},
	})

	if !demand.WeekTotal(0).Equal(decimal.NewFromInt(85)) {
		t.Errorf("Expected week total 85, got %s", demand.WeekTotal(0))
	}
	if !demand.At("Retail", 1).Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected 25, got %s", demand.At("Retail", 1))
	}
}
