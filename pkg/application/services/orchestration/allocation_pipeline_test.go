package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/events"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
	testhelpers "github.com/vsinha/alloc/pkg/infrastructure/testing"
)

func newPipeline(t *testing.T, policy allocation.Policy) (*AllocationPipeline, *events.InMemoryEventStore) {
	t.Helper()
	store := events.NewInMemoryEventStore(zerolog.Nop())
	pipeline, err := NewAllocationPipeline(solver.NewSimplexSolver(solver.DefaultOptions()), policy, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	return pipeline, store
}

func eventTypes(t *testing.T, store *events.InMemoryEventStore, runID string) []string {
	t.Helper()
	recorded, err := store.ReadEvents(runID, 1)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	types := make([]string, len(recorded))
	for i, e := range recorded {
		types[i] = e.Type()
	}
	return types
}

func TestAllocationPipeline_SampleScenario(t *testing.T) {
	sc := testhelpers.BuildSupermanPlusScenario()
	pipeline, store := newPipeline(t, allocation.DefaultPolicy())

	run, err := pipeline.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Failed to run pipeline: %v", err)
	}

	if run.RunID == "" {
		t.Error("Expected a run id")
	}
	if got := run.Products.Allocation.Total(); got != 1200 {
		t.Errorf("Expected 1200 units allocated, got %d", got)
	}

	for i, w := range sc.Weeks {
		focus := decimal.NewFromInt(int64(run.Products.Allocation.Units[sc.FocusProduct][i]))
		if !run.Channels.Allocation.WeekTotal(i).Equal(focus) {
			t.Errorf("Week %s: channels sum to %s, expected %s", w, run.Channels.Allocation.WeekTotal(i), focus)
		}

		partner := run.Channels.Allocation.At(sc.PartnerChannel, i)
		if !run.Regions.Allocation.WeekTotal(i).Equal(partner) {
			t.Errorf("Week %s: regions sum to %s, expected %s", w, run.Regions.Allocation.WeekTotal(i), partner)
		}

		for k := 0; k+1 < len(sc.ChannelPriority); k++ {
			hi := run.Channels.Allocation.At(sc.ChannelPriority[k], i)
			lo := run.Channels.Allocation.At(sc.ChannelPriority[k+1], i)
			if hi.LessThan(lo) {
				t.Errorf("Week %s: %s (%s) below %s (%s)", w, sc.ChannelPriority[k], hi, sc.ChannelPriority[k+1], lo)
			}
		}
	}

	stages := run.Stages()
	if len(stages) != 3 {
		t.Fatalf("Expected 3 stage reports, got %d", len(stages))
	}
	for _, report := range stages {
		if report.Status != "optimal" {
			t.Errorf("Stage %s finished %s", report.Stage, report.Status)
		}
		t.Logf("  %s: objective=%.2f variables=%d constraints=%d nodes=%d",
			report.Stage, report.Objective, report.Variables, report.Constraints, report.Nodes)
	}

	expected := []string{
		events.StageStartedEvent, events.StageSolvedEvent,
		events.StageStartedEvent, events.StageSolvedEvent,
		events.StageStartedEvent, events.StageSolvedEvent,
		events.PipelineCompletedEvent,
	}
	got := eventTypes(t, store, run.RunID)
	if len(got) != len(expected) {
		t.Fatalf("Expected events %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Event %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestAllocationPipeline_InfeasibleProductStage(t *testing.T) {
	policy := allocation.DefaultPolicy()
	policy.WOSFloor = 50
	pipeline, store := newPipeline(t, policy)

	run, err := pipeline.Run(context.Background(), testhelpers.BuildSupermanPlusScenario())
	if run != nil {
		t.Error("Expected no partial result on failure")
	}
	if !errors.Is(err, domain.ErrInfeasibleAllocation) {
		t.Fatalf("Expected infeasible allocation, got %v", err)
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 2 {
		t.Fatalf("Expected started and failed events, got %d", len(all))
	}
	failed, ok := all[1].Data().(events.StageFailed)
	if !ok {
		t.Fatalf("Expected StageFailed payload, got %T", all[1].Data())
	}
	if failed.Stage != "product" || len(failed.Conflicts) == 0 {
		t.Errorf("Expected product stage failure with conflicts, got %+v", failed)
	}
}

func TestAllocationPipeline_RejectsMismatchedInput(t *testing.T) {
	sc := testhelpers.BuildSupermanPlusScenario()
	sc.Supply = entities.NewSupplyPlan(sc.Weeks, []entities.Quantity{230, 270})
	pipeline, store := newPipeline(t, allocation.DefaultPolicy())

	_, err := pipeline.Run(context.Background(), sc)
	if !errors.Is(err, domain.ErrInputShapeMismatch) {
		t.Fatalf("Expected input shape mismatch, got %v", err)
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 0 {
		t.Errorf("Expected no events before validation passes, got %d", len(all))
	}
}

func TestNewAllocationPipeline_RequiresSolver(t *testing.T) {
	_, err := NewAllocationPipeline(nil, allocation.DefaultPolicy(), nil, zerolog.Nop())
	if !errors.Is(err, domain.ErrSolverUnavailable) {
		t.Errorf("Expected solver unavailable, got %v", err)
	}
}

func TestAllocationPipeline_ZeroFocusAllocation(t *testing.T) {
	sc := testhelpers.BuildSupermanPlusScenario()
	pipeline, _ := newPipeline(t, allocation.DefaultPolicy())

	products := entities.NewProductAllocation(sc.Weeks, sc.ProductIDs())
	channels, err := pipeline.channels.Allocate(context.Background(), sc, products)
	if err != nil {
		t.Fatalf("Failed to allocate channels: %v", err)
	}

	var demand float64
	for i := range sc.Weeks {
		demand += sc.ChannelDemand.WeekTotal(i).InexactFloat64()
		for _, c := range channels.Allocation.Segments {
			if !channels.Allocation.At(c, i).IsZero() {
				t.Errorf("Expected zero allocation for %s week %d, got %s", c, i, channels.Allocation.At(c, i))
			}
		}
	}
	if diff := channels.Report.Objective - demand; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected objective %.2f, got %.2f", demand, channels.Report.Objective)
	}
}
