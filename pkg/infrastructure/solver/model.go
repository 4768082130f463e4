// Package solver is the linear / mixed-integer programming collaborator used by
// the allocation stages. Models are built with named variables and constraints
// and solved by a Solver backend.
package solver

import (
	"fmt"
	"math"
)

// Inf is used for a variable bound that does not exist
var Inf = math.Inf(1)

// VarKind distinguishes continuous from integer variables
type VarKind int

const (
	Continuous VarKind = iota
	Integer
)

// Sense is the relation of a linear constraint
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

// String method for Sense enum
func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Direction is the optimisation direction of the objective
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Var is a decision variable owned by a Model
type Var struct {
	index int
	name  string
	lb    float64
	ub    float64
	kind  VarKind
}

// Name returns the variable name
func (v *Var) Name() string { return v.name }

// Index returns the position of the variable in its model
func (v *Var) Index() int { return v.index }

// Term is a coefficient applied to a variable
type Term struct {
	Var  *Var
	Coef float64
}

// Expr is a linear expression: a sum of terms
type Expr []Term

// Plus returns the expression with coef*v appended
func (e Expr) Plus(coef float64, v *Var) Expr {
	return append(e, Term{Var: v, Coef: coef})
}

// Sum returns the expression with every variable appended at coefficient 1
func (e Expr) Sum(vars ...*Var) Expr {
	for _, v := range vars {
		e = append(e, Term{Var: v, Coef: 1})
	}
	return e
}

// Constraint is a named linear constraint: Expr Sense RHS
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Model is a linear program, optionally with integer variables
type Model struct {
	Name        string
	vars        []*Var
	constraints []Constraint
	objective   Expr
	direction   Direction
}

// NewModel creates an empty model
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar adds a variable with bounds lb <= v <= ub. Use -Inf / Inf for no bound.
func (m *Model) AddVar(name string, lb, ub float64, kind VarKind) *Var {
	v := &Var{index: len(m.vars), name: name, lb: lb, ub: ub, kind: kind}
	m.vars = append(m.vars, v)
	return v
}

// AddConstraint adds a named constraint expr sense rhs
func (m *Model) AddConstraint(name string, expr Expr, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

// SetObjective sets the linear objective and its direction
func (m *Model) SetObjective(expr Expr, direction Direction) {
	m.objective = expr
	m.direction = direction
}

// Vars returns the model variables in creation order
func (m *Model) Vars() []*Var { return m.vars }

// Constraints returns the model constraints in creation order
func (m *Model) Constraints() []Constraint { return m.constraints }

// NumVars returns the number of variables
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of constraints
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Direction returns the objective direction
func (m *Model) Direction() Direction { return m.direction }

// HasIntegers reports whether any variable is integer
func (m *Model) HasIntegers() bool {
	for _, v := range m.vars {
		if v.kind == Integer {
			return true
		}
	}
	return false
}

// Validate checks the model is well formed
func (m *Model) Validate() error {
	names := make(map[string]bool, len(m.vars))
	for _, v := range m.vars {
		if names[v.name] {
			return fmt.Errorf("model %s: duplicate variable %q", m.Name, v.name)
		}
		names[v.name] = true
		if math.IsNaN(v.lb) || math.IsNaN(v.ub) {
			return fmt.Errorf("model %s: variable %q has NaN bound", m.Name, v.name)
		}
		if v.lb > v.ub {
			return fmt.Errorf("model %s: variable %q has lower bound %g above upper bound %g", m.Name, v.name, v.lb, v.ub)
		}
		if math.IsInf(v.lb, 1) || math.IsInf(v.ub, -1) {
			return fmt.Errorf("model %s: variable %q has an empty domain", m.Name, v.name)
		}
	}

	checkExpr := func(owner string, expr Expr) error {
		for _, t := range expr {
			if t.Var == nil || t.Var.index >= len(m.vars) || m.vars[t.Var.index] != t.Var {
				return fmt.Errorf("model %s: %s references a variable from another model", m.Name, owner)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("model %s: %s has a non-finite coefficient", m.Name, owner)
			}
		}
		return nil
	}

	for _, c := range m.constraints {
		if err := checkExpr("constraint "+c.Name, c.Expr); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("model %s: constraint %q has a non-finite right-hand side", m.Name, c.Name)
		}
	}
	return checkExpr("objective", m.objective)
}

// subset returns a model sharing the variables but keeping only the listed
// constraints and no objective. Used for feasibility probes.
func (m *Model) subset(keep []int) *Model {
	sub := &Model{Name: m.Name, vars: m.vars, direction: Minimize}
	for _, i := range keep {
		sub.constraints = append(sub.constraints, m.constraints[i])
	}
	return sub
}

// objectiveValue evaluates the objective at x
func (m *Model) objectiveValue(x []float64) float64 {
	var total float64
	for _, t := range m.objective {
		total += t.Coef * x[t.Var.index]
	}
	return total
}
