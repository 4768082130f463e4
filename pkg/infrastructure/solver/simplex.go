package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// coefEpsilon treats smaller coefficients as structural zeros
const coefEpsilon = 1e-12

// SimplexSolver solves models with gonum's simplex method. Integer variables
// are handled by depth-first branch-and-bound over LP relaxations.
type SimplexSolver struct {
	opts Options
}

// NewSimplexSolver creates a simplex backend. Zero option fields take defaults.
func NewSimplexSolver(opts Options) *SimplexSolver {
	defaults := DefaultOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaults.Tolerance
	}
	if opts.IntegralityTolerance <= 0 {
		opts.IntegralityTolerance = defaults.IntegralityTolerance
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = defaults.MaxNodes
	}
	opts.Backend = BackendSimplex
	return &SimplexSolver{opts: opts}
}

// Verify interface compliance
var _ Solver = (*SimplexSolver)(nil)

// Solve implements Solver
func (s *SimplexSolver) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lb := make([]float64, len(m.vars))
	ub := make([]float64, len(m.vars))
	for i, v := range m.vars {
		lb[i], ub[i] = v.lb, v.ub
	}

	if m.HasIntegers() {
		return s.branchAndBound(ctx, m, lb, ub)
	}

	r, err := s.relax(m, lb, ub)
	if err != nil {
		return nil, err
	}
	sol := &Solution{Status: r.status, Nodes: 1}
	if r.status == Optimal {
		sol.Values = r.x
		sol.Objective = m.objectiveValue(r.x)
	}
	return sol, nil
}

type relaxation struct {
	status Status
	x      []float64
}

// column maps a model variable onto standard-form columns: x = offset + pos - neg
type column struct {
	pos    int
	neg    int
	offset float64
}

type stdRow struct {
	coefs map[int]float64
	sense Sense
	rhs   float64
}

// relax solves the LP relaxation of m under the given bounds
func (s *SimplexSolver) relax(m *Model, lb, ub []float64) (relaxation, error) {
	n := len(m.vars)
	for j := 0; j < n; j++ {
		if lb[j] > ub[j]+s.opts.Tolerance {
			return relaxation{status: Infeasible}, nil
		}
	}

	// Shift bounded-below variables to start at zero; split free ones.
	cols := make([]column, n)
	numStructural := 0
	for j := 0; j < n; j++ {
		if math.IsInf(lb[j], -1) {
			cols[j] = column{pos: numStructural, neg: numStructural + 1}
			numStructural += 2
		} else {
			cols[j] = column{pos: numStructural, neg: -1, offset: lb[j]}
			numStructural++
		}
	}

	rows := make([]stdRow, 0, len(m.constraints)+n)
	addRow := func(expr Expr, sense Sense, rhs float64) {
		r := stdRow{coefs: make(map[int]float64, len(expr)), sense: sense, rhs: rhs}
		for _, t := range expr {
			c := cols[t.Var.index]
			r.rhs -= t.Coef * c.offset
			r.coefs[c.pos] += t.Coef
			if c.neg >= 0 {
				r.coefs[c.neg] -= t.Coef
			}
		}
		rows = append(rows, r)
	}
	for _, c := range m.constraints {
		addRow(c.Expr, c.Sense, c.RHS)
	}
	for j, v := range m.vars {
		if !math.IsInf(ub[j], 1) {
			addRow(Expr{{Var: v, Coef: 1}}, LessEqual, ub[j])
		}
	}

	// Drop empty rows, checking them directly.
	kept := rows[:0]
	for _, r := range rows {
		empty := true
		for _, coef := range r.coefs {
			if math.Abs(coef) > coefEpsilon {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, r)
			continue
		}
		if !holdsAtZero(r, s.opts.Tolerance) {
			return relaxation{status: Infeasible}, nil
		}
	}
	rows = kept

	cost := make([]float64, numStructural)
	sign := 1.0
	if m.direction == Maximize {
		sign = -1
	}
	for _, t := range m.objective {
		c := cols[t.Var.index]
		cost[c.pos] += sign * t.Coef
		if c.neg >= 0 {
			cost[c.neg] -= sign * t.Coef
		}
	}

	// Columns that no row touches sit at zero unless they improve the objective forever.
	used := make([]bool, numStructural)
	for _, r := range rows {
		for col, coef := range r.coefs {
			if math.Abs(coef) > coefEpsilon {
				used[col] = true
			}
		}
	}
	lpIndex := make([]int, numStructural)
	numUsed := 0
	for col := 0; col < numStructural; col++ {
		if !used[col] {
			if cost[col] < -coefEpsilon {
				return relaxation{status: Unbounded}, nil
			}
			lpIndex[col] = -1
			continue
		}
		lpIndex[col] = numUsed
		numUsed++
	}

	y := make([]float64, numStructural)
	if len(rows) > 0 {
		status, values, err := s.solveStandard(rows, cost, lpIndex, numUsed)
		if err != nil {
			return relaxation{}, fmt.Errorf("model %s: %w", m.Name, err)
		}
		if status != Optimal {
			return relaxation{status: status}, nil
		}
		for col, idx := range lpIndex {
			if idx >= 0 {
				y[col] = values[idx]
			}
		}
	}

	x := make([]float64, n)
	for j, c := range cols {
		v := c.offset + y[c.pos]
		if c.neg >= 0 {
			v -= y[c.neg]
		}
		x[j] = math.Min(math.Max(v, lb[j]), ub[j])
	}
	return relaxation{status: Optimal, x: x}, nil
}

func holdsAtZero(r stdRow, tol float64) bool {
	switch r.sense {
	case LessEqual:
		return r.rhs >= -tol
	case GreaterEqual:
		return r.rhs <= tol
	default:
		return math.Abs(r.rhs) <= tol
	}
}

// solveStandard assembles min cᵀy s.t. Ay = b, y >= 0 and hands it to gonum.
// Equality rows are kept as-is first; when gonum cannot find a basis for them
// they are split into inequality pairs, which always have a slack basis.
func (s *SimplexSolver) solveStandard(rows []stdRow, cost []float64, lpIndex []int, numUsed int) (Status, []float64, error) {
	status, values, err := s.simplex(rows, cost, lpIndex, numUsed, false)
	if errors.Is(err, lp.ErrSingular) || errors.Is(err, errTooManyEqualities) {
		return s.simplex(rows, cost, lpIndex, numUsed, true)
	}
	return status, values, err
}

var errTooManyEqualities = errors.New("more equality rows than columns")

func (s *SimplexSolver) simplex(rows []stdRow, cost []float64, lpIndex []int, numUsed int, splitEqualities bool) (status Status, values []float64, err error) {
	if splitEqualities {
		split := make([]stdRow, 0, 2*len(rows))
		for _, r := range rows {
			if r.sense != Equal {
				split = append(split, r)
				continue
			}
			le, ge := r, r
			le.sense, ge.sense = LessEqual, GreaterEqual
			split = append(split, le, ge)
		}
		rows = split
	}

	numSlack := 0
	for _, r := range rows {
		if r.sense != Equal {
			numSlack++
		}
	}
	m := len(rows)
	n := numUsed + numSlack
	if m > n {
		return Infeasible, nil, errTooManyEqualities
	}

	A := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	c := make([]float64, n)
	for col, idx := range lpIndex {
		if idx >= 0 {
			c[idx] = cost[col]
		}
	}

	slack := numUsed
	for i, r := range rows {
		rowSign := 1.0
		if r.rhs < 0 {
			rowSign = -1
		}
		for col, coef := range r.coefs {
			if idx := lpIndex[col]; idx >= 0 && math.Abs(coef) > coefEpsilon {
				A.Set(i, idx, rowSign*coef)
			}
		}
		switch r.sense {
		case LessEqual:
			A.Set(i, slack, rowSign)
			slack++
		case GreaterEqual:
			A.Set(i, slack, -rowSign)
			slack++
		}
		b[i] = rowSign * r.rhs
	}

	defer func() {
		if rec := recover(); rec != nil {
			status, values, err = Infeasible, nil, fmt.Errorf("simplex backend panic: %v", rec)
		}
	}()

	_, optX, lpErr := lp.Simplex(c, A, b, s.opts.Tolerance, nil)
	switch {
	case lpErr == nil:
		return Optimal, optX[:numUsed], nil
	case errors.Is(lpErr, lp.ErrInfeasible):
		return Infeasible, nil, nil
	case errors.Is(lpErr, lp.ErrUnbounded):
		return Unbounded, nil, nil
	default:
		return Infeasible, nil, fmt.Errorf("simplex: %w", lpErr)
	}
}

// branchAndBound runs depth-first branch-and-bound with best-bound pruning,
// branching on the most fractional integer variable.
func (s *SimplexSolver) branchAndBound(ctx context.Context, m *Model, lb, ub []float64) (*Solution, error) {
	type node struct {
		lb, ub []float64
	}

	sign := 1.0
	if m.direction == Maximize {
		sign = -1
	}

	var incumbent []float64
	best := math.Inf(1)
	stack := []node{{lb: lb, ub: ub}}
	nodes := 0

	for len(stack) > 0 && nodes < s.opts.MaxNodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		r, err := s.relax(m, nd.lb, nd.ub)
		if err != nil {
			return nil, err
		}
		switch r.status {
		case Infeasible:
			continue
		case Unbounded:
			return &Solution{Status: Unbounded, Nodes: nodes}, nil
		}

		bound := sign * m.objectiveValue(r.x)
		if incumbent != nil && bound >= best-s.opts.Tolerance*math.Max(1, math.Abs(best)) {
			continue
		}

		j := s.mostFractional(m, r.x)
		if j < 0 {
			incumbent = s.roundIntegers(m, r.x)
			best = sign * m.objectiveValue(incumbent)
			continue
		}

		v := r.x[j]
		down := node{lb: append([]float64(nil), nd.lb...), ub: append([]float64(nil), nd.ub...)}
		down.ub[j] = math.Floor(v)
		up := node{lb: append([]float64(nil), nd.lb...), ub: append([]float64(nil), nd.ub...)}
		up.lb[j] = math.Ceil(v)

		// The nearer side is pushed last so it is explored first.
		if v-math.Floor(v) < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	limited := len(stack) > 0
	if incumbent == nil {
		if limited {
			return &Solution{Status: NodeLimit, Nodes: nodes}, nil
		}
		return &Solution{Status: Infeasible, Nodes: nodes}, nil
	}

	status := Optimal
	if limited {
		status = NodeLimit
	}
	return &Solution{
		Status:    status,
		Objective: m.objectiveValue(incumbent),
		Values:    incumbent,
		Nodes:     nodes,
	}, nil
}

// mostFractional returns the integer variable furthest from integrality, or -1
func (s *SimplexSolver) mostFractional(m *Model, x []float64) int {
	idx := -1
	worst := s.opts.IntegralityTolerance
	for _, v := range m.vars {
		if v.kind != Integer {
			continue
		}
		frac := math.Abs(x[v.index] - math.Round(x[v.index]))
		if frac > worst {
			worst = frac
			idx = v.index
		}
	}
	return idx
}

func (s *SimplexSolver) roundIntegers(m *Model, x []float64) []float64 {
	out := append([]float64(nil), x...)
	for _, v := range m.vars {
		if v.kind == Integer {
			out[v.index] = math.Round(out[v.index])
		}
	}
	return out
}
