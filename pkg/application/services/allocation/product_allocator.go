package allocation

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// ProductAllocator distributes the material supply across products per week
type ProductAllocator struct {
	solver solver.Solver
	policy Policy
	logger zerolog.Logger
}

// NewProductAllocator creates a product allocator
func NewProductAllocator(s solver.Solver, policy Policy, logger zerolog.Logger) *ProductAllocator {
	return &ProductAllocator{solver: s, policy: policy, logger: logger}
}

// productModel keeps the variable handles needed to read a solution back
type productModel struct {
	model     *solver.Model
	alloc     map[entities.ProductID][]*solver.Var
	shortfall map[entities.ProductID][]*solver.Var
}

// Allocate solves the integer product allocation for a scenario.
//
// Every product must keep allocation to date plus base build at or above its
// cumulative demand. Soft products, and hard products when the policy allows
// it, may fall short through a penalised shortfall variable. From the second
// week on, end-of-week on-hand must cover WOSFloor weeks of lookahead demand;
// only hard shortfall counts towards that floor.
// The supply is consumed in full, either over the horizon or week by week.
func (a *ProductAllocator) Allocate(ctx context.Context, sc *entities.Scenario) (*dto.ProductStageResult, error) {
	if err := a.policy.Validate(); err != nil {
		return nil, err
	}

	pm := a.buildModel(sc)
	sol, report, err := solveStage(ctx, a.solver, dto.StageProduct, pm.model, a.policy.ComputeIIS, a.logger)
	if err != nil {
		return nil, err
	}

	products := sc.ProductIDs()
	allocation := entities.NewProductAllocation(sc.Weeks, products)
	for _, p := range products {
		for i, v := range pm.alloc[p] {
			allocation.Units[p][i] = entities.Quantity(math.Round(sol.Value(v)))
		}
		if vars, ok := pm.shortfall[p]; ok {
			series := make([]float64, len(vars))
			for i, v := range vars {
				series[i] = math.Max(0, sol.Value(v))
			}
			allocation.Shortfall[p] = series
		}
	}

	if err := a.checkSupply(sc, allocation); err != nil {
		return nil, err
	}

	return &dto.ProductStageResult{
		Allocation: allocation,
		Positions:  a.positions(sc, allocation),
		Report:     report,
	}, nil
}

func (a *ProductAllocator) buildModel(sc *entities.Scenario) *productModel {
	m := solver.NewModel("ProductAllocation")
	pm := &productModel{
		model:     m,
		alloc:     make(map[entities.ProductID][]*solver.Var, len(sc.Products)),
		shortfall: make(map[entities.ProductID][]*solver.Var),
	}

	var objective solver.Expr
	var all []*solver.Var

	for _, product := range sc.Products {
		p := product.ID
		penalty := 0.0
		switch {
		case product.Kind == entities.SoftDemand:
			penalty = a.policy.SoftPenalty
		case a.policy.AllowHardShortfall:
			penalty = a.policy.HardPenalty
		}
		withShortfall := product.Kind == entities.SoftDemand || a.policy.AllowHardShortfall

		vars := make([]*solver.Var, len(sc.Weeks))
		for i, w := range sc.Weeks {
			vars[i] = m.AddVar(fmt.Sprintf("alloc[%s,%s]", p, w), 0, solver.Inf, solver.Integer)
			objective = objective.Plus(1, vars[i])
		}
		pm.alloc[p] = vars
		all = append(all, vars...)

		if withShortfall {
			slack := make([]*solver.Var, len(sc.Weeks))
			for i, w := range sc.Weeks {
				slack[i] = m.AddVar(fmt.Sprintf("shortfall[%s,%s]", p, w), 0, solver.Inf, solver.Continuous)
				objective = objective.Plus(-penalty, slack[i])
			}
			pm.shortfall[p] = slack
		}

		base := float64(sc.Base[p])
		for i, w := range sc.Weeks {
			toDate := solver.Expr{}.Sum(vars[:i+1]...)
			required := float64(sc.Demand.CumulativeAt(p, i)) - base

			coverage := toDate
			if withShortfall {
				coverage = append(append(solver.Expr{}, toDate...), solver.Term{Var: pm.shortfall[p][i], Coef: 1})
			}
			m.AddConstraint(fmt.Sprintf("coverage[%s,%s]", p, w), coverage, solver.GreaterEqual, required)

			if i == 0 {
				continue
			}
			// Soft shortfall never buys down the WOS floor; permitted hard shortfall does.
			floor := a.policy.WOSFloor * a.policy.lookaheadDemand(sc.Demand.Incremental[p], i)
			wos := toDate
			if withShortfall && product.Kind == entities.HardDemand {
				wos = coverage
			}
			m.AddConstraint(fmt.Sprintf("wos[%s,%s]", p, w), wos, solver.GreaterEqual, required+floor)
		}
	}

	switch a.policy.Supply {
	case SupplyWeekly:
		for i, w := range sc.Weeks {
			var week solver.Expr
			for _, product := range sc.Products {
				week = week.Plus(1, pm.alloc[product.ID][i])
			}
			m.AddConstraint(fmt.Sprintf("supply[%s]", w), week, solver.Equal, float64(sc.Supply.At(i)))
		}
	default:
		m.AddConstraint("total_supply", solver.Expr{}.Sum(all...), solver.Equal, float64(sc.Supply.Total()))
	}

	m.SetObjective(objective, solver.Maximize)
	return pm
}

// checkSupply confirms the rounded solution still consumes the supply exactly
func (a *ProductAllocator) checkSupply(sc *entities.Scenario, allocation *entities.ProductAllocation) error {
	if a.policy.Supply == SupplyWeekly {
		for i, w := range sc.Weeks {
			if got, want := allocation.WeekTotal(i), sc.Supply.At(i); got != want {
				return fmt.Errorf("%s stage: week %s allocated %d units but supply is %d", dto.StageProduct, w, got, want)
			}
		}
		return nil
	}
	if got, want := allocation.Total(), sc.Supply.Total(); got != want {
		return fmt.Errorf("%s stage: allocated %d units but supply is %d", dto.StageProduct, got, want)
	}
	return nil
}

func (a *ProductAllocator) positions(sc *entities.Scenario, allocation *entities.ProductAllocation) []entities.InventoryPosition {
	positions := make([]entities.InventoryPosition, 0, len(sc.Products)*len(sc.Weeks))
	for _, p := range allocation.Products {
		for i, w := range sc.Weeks {
			positions = append(positions, entities.NewInventoryPosition(
				p,
				w,
				allocation.CumulativeAt(p, i),
				sc.Base[p],
				sc.Demand.CumulativeAt(p, i),
				a.policy.lookaheadDemand(sc.Demand.Incremental[p], i),
			))
		}
	}
	return positions
}
