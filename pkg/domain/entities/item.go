package entities

import "fmt"

// ProductID represents a unique product identifier
type ProductID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// DemandKind tells whether a product's demand coverage is enforced or penalised
type DemandKind int

const (
	HardDemand DemandKind = iota
	SoftDemand
)

// String method for DemandKind enum
func (k DemandKind) String() string {
	switch k {
	case HardDemand:
		return "hard"
	case SoftDemand:
		return "soft"
	default:
		return "unknown"
	}
}

// ParseDemandKind parses "hard" or "soft"
func ParseDemandKind(s string) (DemandKind, error) {
	switch s {
	case "hard", "HARD", "Hard", "":
		return HardDemand, nil
	case "soft", "SOFT", "Soft":
		return SoftDemand, nil
	default:
		return HardDemand, fmt.Errorf("invalid demand kind: %s (expected hard or soft)", s)
	}
}

// Product is a product line competing for the shared material supply
type Product struct {
	ID   ProductID
	Kind DemandKind
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, kind DemandKind) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	return &Product{ID: id, Kind: kind}, nil
}

// BaseBuild maps each product to the units built before the plan horizon starts
type BaseBuild map[ProductID]Quantity
