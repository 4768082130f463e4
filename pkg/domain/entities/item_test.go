package entities

import "testing"

func TestNewProduct_Validation(t *testing.T) {
	product, err := NewProduct("SupermanPlus", SoftDemand)
	if err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}
	if product.Kind != SoftDemand {
		t.Errorf("Expected soft demand, got %s", product.Kind)
	}

	if _, err := NewProduct("", HardDemand); err == nil {
		t.Error("Expected error for empty product id")
	}
}

func TestParseDemandKind(t *testing.T) {
	testCases := []struct {
		input    string
		expected DemandKind
		wantErr  bool
	}{
		{"hard", HardDemand, false},
		{"soft", SoftDemand, false},
		{"", HardDemand, false},
		{"Soft", SoftDemand, false},
		{"maybe", HardDemand, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			kind, err := ParseDemandKind(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if kind != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, kind)
			}
		})
	}
}

func TestNewWeekIndex(t *testing.T) {
	weeks, err := NewWeekIndex("wk2", "wk3", "wk4", "wk5")
	if err != nil {
		t.Fatalf("Expected valid week index: %v", err)
	}
	if weeks.Len() != 4 || weeks.Last() != 3 {
		t.Errorf("Expected 4 weeks with last position 3, got %d/%d", weeks.Len(), weeks.Last())
	}
	if pos, ok := weeks.Position("wk4"); !ok || pos != 2 {
		t.Errorf("Expected wk4 at position 2, got %d (%t)", pos, ok)
	}

	if _, err := NewWeekIndex(); err == nil {
		t.Error("Expected error for empty week index")
	}
	if _, err := NewWeekIndex("wk2", "wk2"); err == nil {
		t.Error("Expected error for duplicate week label")
	}
}
