package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/domain/services"
	"github.com/vsinha/alloc/pkg/infrastructure/events"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// AllocationPipeline runs the product, channel and region stages in sequence.
// Each stage is solved to optimality before its output becomes the next
// stage's total; later stages never revisit earlier decisions.
type AllocationPipeline struct {
	products   *allocation.ProductAllocator
	channels   *allocation.ChannelAllocator
	regions    *allocation.RegionAllocator
	validator  *services.ScenarioValidator
	eventStore events.EventStore
	logger     zerolog.Logger
}

// NewAllocationPipeline creates a pipeline. eventStore may be nil.
func NewAllocationPipeline(
	s solver.Solver,
	policy allocation.Policy,
	eventStore events.EventStore,
	logger zerolog.Logger,
) (*AllocationPipeline, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no solver configured", domain.ErrSolverUnavailable)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &AllocationPipeline{
		products:   allocation.NewProductAllocator(s, policy, logger),
		channels:   allocation.NewChannelAllocator(s, policy, logger),
		regions:    allocation.NewRegionAllocator(s, policy, logger),
		validator:  services.NewScenarioValidator(),
		eventStore: eventStore,
		logger:     logger,
	}, nil
}

// Run validates the scenario and solves all three stages. On any failure the
// error is returned with no partial result.
func (p *AllocationPipeline) Run(ctx context.Context, sc *entities.Scenario) (*dto.AllocationRun, error) {
	if err := p.validator.Validate(sc); err != nil {
		return nil, fmt.Errorf("failed to validate scenario: %w", err)
	}

	run := &dto.AllocationRun{
		RunID:     uuid.NewString(),
		Scenario:  sc.Name,
		StartedAt: time.Now(),
	}
	logger := p.logger.With().Str("run_id", run.RunID).Str("scenario", sc.Name).Logger()
	logger.Info().Int("weeks", sc.Weeks.Len()).Int("products", len(sc.Products)).Msg("Starting allocation run")

	// Step 1: products share the material supply
	err := p.stage(ctx, run, dto.StageProduct, func() (dto.StageReport, error) {
		result, err := p.products.Allocate(ctx, sc)
		if err != nil {
			return dto.StageReport{}, err
		}
		run.Products = result
		return result.Report, nil
	})
	if err != nil {
		return nil, err
	}

	// Step 2: the focus product's allocation is split across channels
	err = p.stage(ctx, run, dto.StageChannel, func() (dto.StageReport, error) {
		result, err := p.channels.Allocate(ctx, sc, run.Products.Allocation)
		if err != nil {
			return dto.StageReport{}, err
		}
		run.Channels = result
		return result.Report, nil
	})
	if err != nil {
		return nil, err
	}

	// Step 3: the partner channel's allocation is split across regions
	err = p.stage(ctx, run, dto.StageRegion, func() (dto.StageReport, error) {
		result, err := p.regions.Allocate(ctx, sc, run.Channels.Allocation)
		if err != nil {
			return dto.StageReport{}, err
		}
		run.Regions = result
		return result.Report, nil
	})
	if err != nil {
		return nil, err
	}

	run.Duration = time.Since(run.StartedAt)
	p.emit(events.NewPipelineCompletedEvent(run.RunID, run.Scenario, len(run.Stages()), run.Duration))
	logger.Info().Dur("duration", run.Duration).Msg("Allocation run completed")

	return run, nil
}

func (p *AllocationPipeline) stage(ctx context.Context, run *dto.AllocationRun, stage string, solve func() (dto.StageReport, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.emit(events.NewStageStartedEvent(run.RunID, run.Scenario, stage))

	report, err := solve()
	if err != nil {
		var infeasible *domain.InfeasibleAllocationError
		var conflicts []string
		if errors.As(err, &infeasible) {
			conflicts = infeasible.Conflicts
		}
		p.emit(events.NewStageFailedEvent(run.RunID, stage, err, conflicts))
		return err
	}

	p.emit(events.NewStageSolvedEvent(run.RunID, events.StageSolved{
		Stage:       report.Stage,
		Status:      report.Status,
		Objective:   report.Objective,
		Variables:   report.Variables,
		Constraints: report.Constraints,
		Nodes:       report.Nodes,
		Duration:    report.Duration,
	}))
	return nil
}

func (p *AllocationPipeline) emit(event events.Event) {
	if p.eventStore == nil {
		return
	}
	if err := p.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		p.logger.Warn().Err(err).Str("event", event.Type()).Msg("Failed to record event")
	}
}
