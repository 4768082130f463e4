package allocation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// SegmentAllocator splits a weekly total across segments (channels or regions),
// minimising the summed absolute deviation from segment demand. An optional
// priority list forces alloc[a,w] >= alloc[b,w] for consecutive entries a, b.
type SegmentAllocator struct {
	solver solver.Solver
	policy Policy
	logger zerolog.Logger
}

// NewSegmentAllocator creates a segment allocator
func NewSegmentAllocator(s solver.Solver, policy Policy, logger zerolog.Logger) *SegmentAllocator {
	return &SegmentAllocator{solver: s, policy: policy, logger: logger}
}

// Allocate solves one segment stage. totals holds the upstream allocation per week.
func (a *SegmentAllocator) Allocate(
	ctx context.Context,
	stage string,
	totals []decimal.Decimal,
	demand *entities.SegmentDemand,
	priority []string,
) (*dto.SegmentStageResult, error) {
	if err := a.checkShape(stage, totals, demand, priority); err != nil {
		return nil, err
	}

	segments := demand.Segments
	weeks := demand.Weeks
	m := solver.NewModel(modelName(stage))

	alloc := make([][]*solver.Var, len(segments))
	var objective solver.Expr
	for s, seg := range segments {
		alloc[s] = make([]*solver.Var, len(weeks))
		for i, w := range weeks {
			x := m.AddVar(fmt.Sprintf("alloc[%s,%s]", seg, w), 0, solver.Inf, solver.Continuous)
			dev := m.AddVar(fmt.Sprintf("dev[%s,%s]", seg, w), 0, solver.Inf, solver.Continuous)
			want := demand.At(seg, i).InexactFloat64()

			// dev >= |alloc - demand|
			m.AddConstraint(fmt.Sprintf("over[%s,%s]", seg, w), solver.Expr{}.Plus(1, x).Plus(-1, dev), solver.LessEqual, want)
			m.AddConstraint(fmt.Sprintf("under[%s,%s]", seg, w), solver.Expr{}.Plus(1, x).Plus(1, dev), solver.GreaterEqual, want)

			alloc[s][i] = x
			objective = objective.Plus(1, dev)
		}
	}

	index := make(map[string]int, len(segments))
	for s, seg := range segments {
		index[seg] = s
	}

	for i, w := range weeks {
		var match solver.Expr
		for s := range segments {
			match = match.Plus(1, alloc[s][i])
		}
		m.AddConstraint(fmt.Sprintf("match[%s]", w), match, solver.Equal, totals[i].InexactFloat64())

		for k := 0; k+1 < len(priority); k++ {
			hi, lo := index[priority[k]], index[priority[k+1]]
			m.AddConstraint(
				fmt.Sprintf("priority[%s>=%s,%s]", priority[k], priority[k+1], w),
				solver.Expr{}.Plus(1, alloc[hi][i]).Plus(-1, alloc[lo][i]),
				solver.GreaterEqual,
				0,
			)
		}
	}
	m.SetObjective(objective, solver.Minimize)

	sol, report, err := solveStage(ctx, a.solver, stage, m, a.policy.ComputeIIS, a.logger)
	if err != nil {
		return nil, err
	}

	result := entities.NewSegmentAllocation(weeks, segments)
	order := priorityOrder(segments, priority)
	for i := range weeks {
		values := make([]float64, len(segments))
		for s := range segments {
			values[s] = sol.Value(alloc[s][i])
		}
		balanced := balanceToTotal(values, order, totals[i], a.policy.DecimalPlaces)
		for s, seg := range segments {
			result.Units[seg][i] = balanced[s]
		}
	}

	return &dto.SegmentStageResult{Allocation: result, Report: report}, nil
}

func (a *SegmentAllocator) checkShape(stage string, totals []decimal.Decimal, demand *entities.SegmentDemand, priority []string) error {
	var problems []string
	if demand == nil {
		return &domain.InputShapeMismatchError{Problems: []string{stage + " demand table is missing"}}
	}
	if len(demand.Segments) == 0 {
		problems = append(problems, stage+" demand has no segments")
	}
	if len(totals) != len(demand.Weeks) {
		problems = append(problems, fmt.Sprintf("%s totals cover %d weeks but demand covers %d", stage, len(totals), len(demand.Weeks)))
	}
	known := make(map[string]bool, len(demand.Segments))
	for _, seg := range demand.Segments {
		if known[seg] {
			problems = append(problems, fmt.Sprintf("%s segment %q is listed twice", stage, seg))
		}
		known[seg] = true
		if len(demand.Units[seg]) != len(demand.Weeks) {
			problems = append(problems, fmt.Sprintf("%s segment %q has %d weeks of demand, expected %d", stage, seg, len(demand.Units[seg]), len(demand.Weeks)))
		}
	}
	seen := make(map[string]bool, len(priority))
	for _, seg := range priority {
		if !known[seg] {
			problems = append(problems, fmt.Sprintf("%s priority lists unknown segment %q", stage, seg))
		}
		if seen[seg] {
			problems = append(problems, fmt.Sprintf("%s priority lists segment %q twice", stage, seg))
		}
		seen[seg] = true
	}

	if len(problems) > 0 {
		return &domain.InputShapeMismatchError{Problems: problems}
	}
	return nil
}

func modelName(stage string) string {
	switch stage {
	case dto.StageChannel:
		return "ChannelAllocation"
	case dto.StageRegion:
		return "RegionAllocation"
	default:
		return stage + "Allocation"
	}
}
