package allocation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// RegionAllocator splits the partner channel's weekly allocation across
// regions. Regions carry no priority.
type RegionAllocator struct {
	segments *SegmentAllocator
}

// NewRegionAllocator creates a region allocator
func NewRegionAllocator(s solver.Solver, policy Policy, logger zerolog.Logger) *RegionAllocator {
	return &RegionAllocator{segments: NewSegmentAllocator(s, policy, logger)}
}

// Allocate distributes channels.Units[sc.PartnerChannel] across sc.RegionDemand
func (a *RegionAllocator) Allocate(ctx context.Context, sc *entities.Scenario, channels *entities.SegmentAllocation) (*dto.SegmentStageResult, error) {
	if _, ok := channels.Units[sc.PartnerChannel]; !ok {
		return nil, &domain.InputShapeMismatchError{Problems: []string{
			fmt.Sprintf("partner channel %q has no channel allocation", sc.PartnerChannel),
		}}
	}
	return a.segments.Allocate(ctx, dto.StageRegion, channels.Series(sc.PartnerChannel), sc.RegionDemand, nil)
}
