package allocation

import (
	"fmt"

	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
)

// LookaheadPolicy picks the incremental demand a week's WOS floor is measured against
type LookaheadPolicy string

const (
	// LookaheadReusePrior uses the next week's increment; the final week reuses its own
	LookaheadReusePrior LookaheadPolicy = "reuse-prior"
	// LookaheadExtrapolate projects the final week linearly from the last two increments
	LookaheadExtrapolate LookaheadPolicy = "extrapolate"
	// LookaheadCurrentPeriod uses the week's own increment; the final week uses the week before
	LookaheadCurrentPeriod LookaheadPolicy = "current-period"
)

// SupplyPolicy decides how the supply plan constrains stage-1 allocation
type SupplyPolicy string

const (
	// SupplyHorizon requires the whole-horizon allocation to equal the whole-horizon supply
	SupplyHorizon SupplyPolicy = "horizon"
	// SupplyWeekly requires every week's allocation to equal that week's supply
	SupplyWeekly SupplyPolicy = "weekly"
)

// Policy holds the tunable parts of the allocation model
type Policy struct {
	// WOSFloor is the minimum weeks of supply held at the end of every week after the first
	WOSFloor float64
	// SoftPenalty weights soft-product shortfall in the stage-1 objective
	SoftPenalty float64
	// AllowHardShortfall gives hard products a shortfall variable weighted by HardPenalty
	AllowHardShortfall bool
	HardPenalty        float64
	Lookahead          LookaheadPolicy
	Supply             SupplyPolicy
	// DecimalPlaces is the precision channel and region allocations are rounded to
	DecimalPlaces int32
	// ComputeIIS attaches an irreducible infeasible subset to infeasibility errors
	ComputeIIS bool
}

// DefaultPolicy returns the policy used by the sample scenario
func DefaultPolicy() Policy {
	return Policy{
		WOSFloor:           4,
		SoftPenalty:        10,
		AllowHardShortfall: false,
		HardPenalty:        100,
		Lookahead:          LookaheadReusePrior,
		Supply:             SupplyHorizon,
		DecimalPlaces:      4,
		ComputeIIS:         true,
	}
}

// Validate checks the policy values
func (p Policy) Validate() error {
	if p.WOSFloor < 0 {
		return fmt.Errorf("%w: WOS floor cannot be negative, got %g", domain.ErrInvalidInput, p.WOSFloor)
	}
	if p.SoftPenalty < 0 || p.HardPenalty < 0 {
		return fmt.Errorf("%w: shortfall penalties cannot be negative", domain.ErrInvalidInput)
	}
	if p.DecimalPlaces < 0 || p.DecimalPlaces > 12 {
		return fmt.Errorf("%w: decimal places must be between 0 and 12, got %d", domain.ErrInvalidInput, p.DecimalPlaces)
	}
	switch p.Lookahead {
	case LookaheadReusePrior, LookaheadExtrapolate, LookaheadCurrentPeriod:
	default:
		return fmt.Errorf("%w: unknown lookahead policy %q", domain.ErrInvalidInput, p.Lookahead)
	}
	switch p.Supply {
	case SupplyHorizon, SupplyWeekly:
	default:
		return fmt.Errorf("%w: unknown supply policy %q", domain.ErrInvalidInput, p.Supply)
	}
	return nil
}

// ParseLookaheadPolicy parses a lookahead policy name
func ParseLookaheadPolicy(s string) (LookaheadPolicy, error) {
	switch LookaheadPolicy(s) {
	case LookaheadReusePrior, "":
		return LookaheadReusePrior, nil
	case LookaheadExtrapolate:
		return LookaheadExtrapolate, nil
	case LookaheadCurrentPeriod:
		return LookaheadCurrentPeriod, nil
	default:
		return "", fmt.Errorf("invalid lookahead policy: %s (expected reuse-prior, extrapolate or current-period)", s)
	}
}

// ParseSupplyPolicy parses a supply policy name
func ParseSupplyPolicy(s string) (SupplyPolicy, error) {
	switch SupplyPolicy(s) {
	case SupplyHorizon, "":
		return SupplyHorizon, nil
	case SupplyWeekly:
		return SupplyWeekly, nil
	default:
		return "", fmt.Errorf("invalid supply policy: %s (expected horizon or weekly)", s)
	}
}

// lookaheadDemand returns the incremental demand rate week i is measured against
func (p Policy) lookaheadDemand(incremental []entities.Quantity, i int) float64 {
	last := len(incremental) - 1
	at := func(j int) float64 {
		if j < 0 || j > last {
			return 0
		}
		return float64(incremental[j])
	}

	switch p.Lookahead {
	case LookaheadCurrentPeriod:
		if i == last {
			return at(last - 1)
		}
		return at(i)
	case LookaheadExtrapolate:
		if i == last {
			projected := 2*at(last) - at(last-1)
			if projected < 0 {
				return 0
			}
			return projected
		}
		return at(i + 1)
	default:
		if i == last {
			return at(last)
		}
		return at(i + 1)
	}
}
