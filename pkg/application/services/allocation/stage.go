// Package allocation holds the three allocation stages. Each stage builds its
// own model, solves it to optimality and hands a frozen table to the next one.
package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// solveStage solves one stage model and maps non-optimal outcomes onto domain errors
func solveStage(
	ctx context.Context,
	s solver.Solver,
	stage string,
	m *solver.Model,
	computeIIS bool,
	logger zerolog.Logger,
) (*solver.Solution, dto.StageReport, error) {
	started := time.Now()
	report := dto.StageReport{
		Stage:       stage,
		Model:       m.Name,
		Variables:   m.NumVars(),
		Constraints: m.NumConstraints(),
	}

	logger.Debug().
		Str("stage", stage).
		Int("variables", report.Variables).
		Int("constraints", report.Constraints).
		Msg("Solving stage model")

	sol, err := s.Solve(ctx, m)
	report.Duration = time.Since(started)
	if err != nil {
		return nil, report, fmt.Errorf("%s stage: %w", stage, err)
	}
	report.Status = sol.Status.String()
	report.Nodes = sol.Nodes

	switch sol.Status {
	case solver.Optimal:
		report.Objective = sol.Objective
		logger.Info().
			Str("stage", stage).
			Str("status", report.Status).
			Float64("objective", sol.Objective).
			Int("nodes", sol.Nodes).
			Dur("duration", report.Duration).
			Msg("Stage solved")
		return sol, report, nil

	case solver.Infeasible:
		infeasible := &domain.InfeasibleAllocationError{Stage: stage}
		if computeIIS {
			conflicts, iisErr := solver.FindIIS(ctx, s, m)
			if iisErr != nil {
				logger.Warn().Err(iisErr).Str("stage", stage).Msg("Could not isolate conflicting constraints")
			} else {
				infeasible.Conflicts = conflicts
			}
		}
		logger.Error().
			Str("stage", stage).
			Strs("conflicts", infeasible.Conflicts).
			Msg("Stage model is infeasible")
		return nil, report, infeasible

	case solver.Unbounded:
		return nil, report, fmt.Errorf("%s stage: %w", stage, domain.ErrUnboundedAllocation)

	default:
		return nil, report, fmt.Errorf("%s stage: %w after %d nodes", stage, domain.ErrSolverLimit, sol.Nodes)
	}
}
