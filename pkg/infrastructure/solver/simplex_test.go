package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/alloc/pkg/domain"
)

func TestSimplex_ContinuousOptimum(t *testing.T) {
	m := NewModel("lp")
	x := m.AddVar("x", 0, Inf, Continuous)
	y := m.AddVar("y", 0, Inf, Continuous)
	m.AddConstraint("c1", Expr{}.Plus(1, x).Plus(2, y), LessEqual, 4)
	m.AddConstraint("c2", Expr{}.Plus(3, x).Plus(1, y), LessEqual, 6)
	m.SetObjective(Expr{}.Sum(x, y), Maximize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)

	assert.InDelta(t, 1.6, sol.Value(x), 1e-7)
	assert.InDelta(t, 1.2, sol.Value(y), 1e-7)
	assert.InDelta(t, 2.8, sol.Objective, 1e-7)
}

func TestSimplex_Infeasible(t *testing.T) {
	m := NewModel("infeasible")
	x := m.AddVar("x", 0, Inf, Continuous)
	m.AddConstraint("at_least_5", Expr{}.Plus(1, x), GreaterEqual, 5)
	m.AddConstraint("at_most_3", Expr{}.Plus(1, x), LessEqual, 3)
	m.SetObjective(Expr{}.Plus(1, x), Minimize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, sol.Status)
	assert.Nil(t, sol.Values)
}

func TestSimplex_Unbounded(t *testing.T) {
	m := NewModel("unbounded")
	x := m.AddVar("x", 0, Inf, Continuous)
	y := m.AddVar("y", 0, Inf, Continuous)
	m.AddConstraint("gap", Expr{}.Plus(1, x).Plus(-1, y), LessEqual, 1)
	m.SetObjective(Expr{}.Plus(1, x), Maximize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, Unbounded, sol.Status)
}

func TestSimplex_FreeVariableAndEquality(t *testing.T) {
	m := NewModel("free")
	x := m.AddVar("x", math.Inf(-1), Inf, Continuous)
	y := m.AddVar("y", 0, 5, Continuous)
	m.AddConstraint("sum", Expr{}.Sum(x, y), Equal, 2)
	m.SetObjective(Expr{}.Plus(1, x), Minimize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)
	assert.InDelta(t, -3, sol.Value(x), 1e-7)
	assert.InDelta(t, 5, sol.Value(y), 1e-7)
}

func TestSimplex_FixedVariable(t *testing.T) {
	m := NewModel("fixed")
	x := m.AddVar("x", 3, 3, Continuous)
	y := m.AddVar("y", 0, Inf, Continuous)
	m.AddConstraint("cap", Expr{}.Sum(x, y), LessEqual, 5)
	m.SetObjective(Expr{}.Plus(1, y), Maximize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)
	assert.InDelta(t, 3, sol.Value(x), 1e-9)
	assert.InDelta(t, 2, sol.Value(y), 1e-7)
}

func TestSimplex_BoundsOnlyModel(t *testing.T) {
	m := NewModel("bounds")
	x := m.AddVar("x", 2, Inf, Continuous)
	m.SetObjective(Expr{}.Plus(1, x), Minimize)

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)
	assert.Equal(t, 2.0, sol.Value(x))
}

func knapsackModel() (*Model, *Var, *Var) {
	m := NewModel("knapsack")
	x := m.AddVar("x", 0, Inf, Integer)
	y := m.AddVar("y", 0, Inf, Integer)
	m.AddConstraint("weight", Expr{}.Plus(6, x).Plus(4, y), LessEqual, 24)
	m.AddConstraint("volume", Expr{}.Plus(1, x).Plus(2, y), LessEqual, 6)
	m.SetObjective(Expr{}.Plus(5, x).Plus(4, y), Maximize)
	return m, x, y
}

func TestSimplex_BranchAndBound(t *testing.T) {
	m, x, y := knapsackModel()

	sol, err := NewSimplexSolver(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)

	assert.Equal(t, 4.0, sol.Value(x))
	assert.Equal(t, 0.0, sol.Value(y))
	assert.InDelta(t, 20, sol.Objective, 1e-7)
	assert.Greater(t, sol.Nodes, 1)
}

func TestSimplex_NodeLimit(t *testing.T) {
	m, _, _ := knapsackModel()

	opts := DefaultOptions()
	opts.MaxNodes = 1
	sol, err := NewSimplexSolver(opts).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, NodeLimit, sol.Status)
}

func TestSimplex_CancelledContext(t *testing.T) {
	m, _, _ := knapsackModel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimplexSolver(DefaultOptions()).Solve(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModel_Validate(t *testing.T) {
	m := NewModel("bad")
	m.AddVar("x", 5, 1, Continuous)
	assert.Error(t, m.Validate())

	dup := NewModel("dup")
	dup.AddVar("x", 0, 1, Continuous)
	dup.AddVar("x", 0, 1, Continuous)
	assert.Error(t, dup.Validate())

	other := NewModel("other")
	foreign := other.AddVar("z", 0, 1, Continuous)
	mixed := NewModel("mixed")
	mixed.AddVar("x", 0, 1, Continuous)
	mixed.AddConstraint("c", Expr{}.Plus(1, foreign), LessEqual, 1)
	assert.Error(t, mixed.Validate())
}

func TestFindIIS(t *testing.T) {
	m := NewModel("iis")
	x := m.AddVar("x", 0, Inf, Continuous)
	y := m.AddVar("y", 0, Inf, Continuous)
	m.AddConstraint("y_cap", Expr{}.Plus(1, y), LessEqual, 10)
	m.AddConstraint("x_floor", Expr{}.Plus(1, x), GreaterEqual, 5)
	m.AddConstraint("xy_mix", Expr{}.Sum(x, y), GreaterEqual, 1)
	m.AddConstraint("x_cap", Expr{}.Plus(1, x), LessEqual, 3)

	conflicts, err := FindIIS(context.Background(), NewSimplexSolver(DefaultOptions()), m)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x_floor", "x_cap"}, conflicts)
}

func TestFindIIS_FeasibleModel(t *testing.T) {
	m := NewModel("feasible")
	x := m.AddVar("x", 0, Inf, Continuous)
	m.AddConstraint("x_cap", Expr{}.Plus(1, x), LessEqual, 3)

	_, err := FindIIS(context.Background(), NewSimplexSolver(DefaultOptions()), m)
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Options{Backend: "gurobi"})
	assert.ErrorIs(t, err, domain.ErrSolverUnavailable)

	s, err := New(DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &SimplexSolver{}, s)
}
