package solver

import (
	"context"
	"fmt"
)

// FindIIS returns the names of an irreducible infeasible subset of m's
// constraints: the subset is infeasible, and dropping any one member makes it
// feasible. It runs a deletion filter, re-solving once per constraint, with
// variable bounds always kept and the objective ignored.
func FindIIS(ctx context.Context, s Solver, m *Model) ([]string, error) {
	keep := make([]int, m.NumConstraints())
	for i := range keep {
		keep[i] = i
	}

	sol, err := s.Solve(ctx, m.subset(keep))
	if err != nil {
		return nil, err
	}
	if sol.Status != Infeasible {
		return nil, fmt.Errorf("model %s is not infeasible (status %s)", m.Name, sol.Status)
	}

	for i := 0; i < len(keep); {
		trial := make([]int, 0, len(keep)-1)
		trial = append(trial, keep[:i]...)
		trial = append(trial, keep[i+1:]...)

		sol, err := s.Solve(ctx, m.subset(trial))
		if err != nil {
			return nil, err
		}
		if sol.Status == Infeasible {
			keep = trial
			continue
		}
		i++
	}

	names := make([]string, len(keep))
	for i, idx := range keep {
		names[i] = m.constraints[idx].Name
	}
	return names, nil
}
