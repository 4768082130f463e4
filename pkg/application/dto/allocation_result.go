package dto

import (
	"time"

	"github.com/vsinha/alloc/pkg/domain/entities"
)

// Stage names used in reports, events and errors
const (
	StageProduct = "product"
	StageChannel = "channel"
	StageRegion  = "region"
)

// StageReport describes one solved stage
type StageReport struct {
	Stage       string        `json:"stage"`
	Model       string        `json:"model"`
	Status      string        `json:"status"`
	Objective   float64       `json:"objective"`
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
	Nodes       int           `json:"nodes"`
	Duration    time.Duration `json:"duration"`
}

// ProductStageResult is the output of the product allocator
type ProductStageResult struct {
	Allocation *entities.ProductAllocation
	// Positions holds the end-of-week inventory picture per product, in product then week order
	Positions []entities.InventoryPosition
	Report    StageReport
}

// SegmentStageResult is the output of the channel or region allocator
type SegmentStageResult struct {
	Allocation *entities.SegmentAllocation
	Report     StageReport
}

// AllocationRun contains the complete output of one pipeline run
type AllocationRun struct {
	RunID     string
	Scenario  string
	Products  *ProductStageResult
	Channels  *SegmentStageResult
	Regions   *SegmentStageResult
	StartedAt time.Time
	Duration  time.Duration
}

// Stages returns the stage reports in execution order
func (r *AllocationRun) Stages() []StageReport {
	var reports []StageReport
	if r.Products != nil {
		reports = append(reports, r.Products.Report)
	}
	if r.Channels != nil {
		reports = append(reports, r.Channels.Report)
	}
	if r.Regions != nil {
		reports = append(reports, r.Regions.Report)
	}
	return reports
}
