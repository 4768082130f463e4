package solver

import "context"

// Status is the outcome of a solve
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	// NodeLimit means branch-and-bound stopped at its node budget before proving optimality
	NodeLimit
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case NodeLimit:
		return "node_limit"
	default:
		return "unknown"
	}
}

// Solution is the result of a solve. Values is indexed by Var.Index and is
// only populated when a feasible point was found.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	Nodes     int
}

// Value returns the solved value of v
func (s *Solution) Value(v *Var) float64 {
	if s == nil || v == nil || v.index >= len(s.Values) {
		return 0
	}
	return s.Values[v.index]
}

// Solver solves a Model. Infeasible and unbounded models are reported through
// Solution.Status; an error means the model was malformed or the backend failed.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
