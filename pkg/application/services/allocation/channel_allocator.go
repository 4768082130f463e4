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

// ChannelAllocator splits the focus product's weekly allocation across sales
// channels under the scenario's channel priority chain
type ChannelAllocator struct {
	segments *SegmentAllocator
}

// NewChannelAllocator creates a channel allocator
func NewChannelAllocator(s solver.Solver, policy Policy, logger zerolog.Logger) *ChannelAllocator {
	return &ChannelAllocator{segments: NewSegmentAllocator(s, policy, logger)}
}

// Allocate distributes products.Units[sc.FocusProduct] across sc.ChannelDemand
func (a *ChannelAllocator) Allocate(ctx context.Context, sc *entities.Scenario, products *entities.ProductAllocation) (*dto.SegmentStageResult, error) {
	series, ok := products.Units[sc.FocusProduct]
	if !ok {
		return nil, &domain.InputShapeMismatchError{Problems: []string{
			fmt.Sprintf("focus product %q has no product allocation", sc.FocusProduct),
		}}
	}
	return a.segments.Allocate(ctx, dto.StageChannel, entities.QuantitySeries(series), sc.ChannelDemand, sc.ChannelPriority)
}
