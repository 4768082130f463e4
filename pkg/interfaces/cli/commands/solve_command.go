package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/application/services/orchestration"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/events"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
	"github.com/vsinha/alloc/pkg/interfaces/cli/output"
)

// Config holds configuration for the solve and validate commands
type Config struct {
	Scenario  string
	OutputDir string
	Format    string
	Verbose   bool
	Policy    allocation.Policy
	FirstWeek entities.FirstWeekIncrement
	Solver    solver.Options
	Logger    zerolog.Logger
	// Out receives report output; os.Stdout when nil
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// SolveCommand runs the allocation pipeline on one scenario
type SolveCommand struct {
	config Config
}

// NewSolveCommand creates a new solve command with the given configuration
func NewSolveCommand(config Config) *SolveCommand {
	return &SolveCommand{
		config: config,
	}
}

// Execute loads the scenario, solves all stages and writes the report
func (c *SolveCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	w := c.config.out()

	if c.config.Verbose {
		fmt.Fprintf(w, "📂 Loading scenario from %s...\n", c.config.Scenario)
	}
	sc, err := loadScenario(c.config.Scenario, c.config.FirstWeek, memory.NewScenarioRepository())
	if err != nil {
		return err
	}

	s, err := solver.New(c.config.Solver)
	if err != nil {
		return fmt.Errorf("error creating solver: %w", err)
	}

	store := events.NewInMemoryEventStore(c.config.Logger)
	if c.config.Verbose {
		err := store.Subscribe(events.AllEventTypes, events.HandlerFunc(func(event events.Event) error {
			printEvent(w, event)
			return nil
		}))
		if err != nil {
			return fmt.Errorf("error subscribing to events: %w", err)
		}
		fmt.Fprintf(w, "🚀 Solving %s (%d weeks, %d products)...\n", sc.Name, sc.Weeks.Len(), len(sc.Products))
	}

	pipeline, err := orchestration.NewAllocationPipeline(s, c.config.Policy, store, c.config.Logger)
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	run, err := pipeline.Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	return output.Generate(run, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Out:       w,
	})
}

// validateInputs checks the command configuration
func (c *SolveCommand) validateInputs() error {
	if c.config.Scenario == "" {
		return fmt.Errorf("a scenario directory or file is required")
	}

	switch c.config.Format {
	case "text", "json":
	case "csv", "xlsx":
		if c.config.OutputDir == "" {
			return fmt.Errorf("output directory required for %s format", c.config.Format)
		}
	default:
		return fmt.Errorf("invalid format: %s (must be text, json, csv or xlsx)", c.config.Format)
	}

	return c.config.Policy.Validate()
}

func printEvent(w io.Writer, event events.Event) {
	switch data := event.Data().(type) {
	case events.StageStarted:
		fmt.Fprintf(w, "  ▶ %s stage started\n", data.Stage)
	case events.StageSolved:
		fmt.Fprintf(w, "  ✅ %s stage %s: objective %.4f (%d vars, %d constraints, %v)\n",
			data.Stage, data.Status, data.Objective, data.Variables, data.Constraints, data.Duration)
	case events.StageFailed:
		fmt.Fprintf(w, "  ❌ %s stage failed: %s\n", data.Stage, data.Error)
		for _, name := range data.Conflicts {
			fmt.Fprintf(w, "     conflict: %s\n", name)
		}
	case events.PipelineCompleted:
		fmt.Fprintf(w, "  🏁 %d stages completed in %v\n", data.Stages, data.Duration)
	}
}
