package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	testhelpers "github.com/vsinha/alloc/pkg/infrastructure/testing"
)

func TestScenarioValidator_SampleIsValid(t *testing.T) {
	v := NewScenarioValidator()

	result := v.ValidateScenario(testhelpers.BuildSupermanPlusScenario())
	if !result.Valid() {
		t.Fatalf("Expected sample scenario to be valid, got shape=%v value=%v", result.ShapeProblems, result.ValueProblems)
	}
	if err := result.Err(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestScenarioValidator_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(sc *entities.Scenario)
		problem string
	}{
		{
			name: "short_supply",
			mutate: func(sc *entities.Scenario) {
				sc.Supply.Units = sc.Supply.Units[:3]
			},
			problem: "supply covers 3 weeks",
		},
		{
			name: "unknown_demand_product",
			mutate: func(sc *entities.Scenario) {
				sc.Demand.Cumulative["Batman"] = []entities.Quantity{1, 2, 3, 4}
				sc.Demand.Incremental["Batman"] = []entities.Quantity{0, 1, 1, 1}
			},
			problem: "demand lists unknown product Batman",
		},
		{
			name: "missing_base_build",
			mutate: func(sc *entities.Scenario) {
				delete(sc.Base, "SupermanMini")
			},
			problem: "base build is missing product SupermanMini",
		},
		{
			name: "unknown_priority_channel",
			mutate: func(sc *entities.Scenario) {
				sc.ChannelPriority = append(sc.ChannelPriority, "Kiosk")
			},
			problem: `channel priority lists unknown channel "Kiosk"`,
		},
		{
			name: "missing_partner_channel",
			mutate: func(sc *entities.Scenario) {
				sc.PartnerChannel = "Wholesale"
			},
			problem: `partner channel "Wholesale" is not a demand channel`,
		},
		{
			name: "unknown_focus_product",
			mutate: func(sc *entities.Scenario) {
				sc.FocusProduct = "SupermanMax"
			},
			problem: `focus product "SupermanMax" is not a scenario product`,
		},
		{
			name: "region_weeks_differ",
			mutate: func(sc *entities.Scenario) {
				weeks, _ := entities.NewWeekIndex("wk2", "wk3", "wk4", "wk6")
				sc.RegionDemand.Weeks = weeks
			},
			problem: "region demand weeks",
		},
		{
			name: "missing_region_demand",
			mutate: func(sc *entities.Scenario) {
				sc.RegionDemand = nil
			},
			problem: "region demand is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := testhelpers.BuildSupermanPlusScenario()
			tt.mutate(sc)

			err := NewScenarioValidator().Validate(sc)
			if !errors.Is(err, domain.ErrInputShapeMismatch) {
				t.Fatalf("Expected input shape mismatch, got %v", err)
			}

			var mismatch *domain.InputShapeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("Expected *InputShapeMismatchError, got %T", err)
			}
			found := false
			for _, p := range mismatch.Problems {
				if strings.Contains(p, tt.problem) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected a problem containing %q, got %v", tt.problem, mismatch.Problems)
			}
		})
	}
}

func TestScenarioValidator_InvalidValues(t *testing.T) {
	sc := testhelpers.BuildSupermanPlusScenario()
	sc.Supply.Units[1] = -5
	sc.RegionDemand.Units["PAC"][0] = decimal.NewFromInt(-1)
	sc.Demand.Incremental["Superman"][2] = 99

	result := NewScenarioValidator().ValidateScenario(sc)
	if len(result.ShapeProblems) != 0 {
		t.Fatalf("Expected no shape problems, got %v", result.ShapeProblems)
	}
	if len(result.ValueProblems) != 3 {
		t.Errorf("Expected 3 value problems, got %d: %v", len(result.ValueProblems), result.ValueProblems)
	}

	err := result.Err()
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected invalid input error, got %v", err)
	}
}

func TestScenarioValidator_Nil(t *testing.T) {
	if err := NewScenarioValidator().Validate(nil); !errors.Is(err, domain.ErrInputShapeMismatch) {
		t.Errorf("Expected shape mismatch for nil scenario, got %v", err)
	}
}
