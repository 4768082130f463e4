package solver

import (
	"fmt"

	"github.com/vsinha/alloc/pkg/domain"
)

// BackendSimplex names the gonum simplex backend
const BackendSimplex = "simplex"

// Options configures a solver backend
type Options struct {
	Backend              string
	Tolerance            float64
	IntegralityTolerance float64
	MaxNodes             int
}

// DefaultOptions returns the default backend options
func DefaultOptions() Options {
	return Options{
		Backend:              BackendSimplex,
		Tolerance:            1e-9,
		IntegralityTolerance: 1e-6,
		MaxNodes:             10000,
	}
}

// New returns the backend named by opts.Backend. An unknown backend fails with
// domain.ErrSolverUnavailable so misconfiguration surfaces at startup.
func New(opts Options) (Solver, error) {
	switch opts.Backend {
	case BackendSimplex, "":
		return NewSimplexSolver(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q (supported: %s)", domain.ErrSolverUnavailable, opts.Backend, BackendSimplex)
	}
}
