package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/alloc/pkg/domain/services"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/memory"
)

// ValidateCommand checks a scenario's tables without solving
type ValidateCommand struct {
	config Config
}

// NewValidateCommand creates a new validate command
func NewValidateCommand(config Config) *ValidateCommand {
	return &ValidateCommand{
		config: config,
	}
}

// Execute loads the scenario and reports every shape and value problem
func (c *ValidateCommand) Execute(ctx context.Context) error {
	w := c.config.out()

	sc, err := loadScenario(c.config.Scenario, c.config.FirstWeek, memory.NewScenarioRepository())
	if err != nil {
		return err
	}

	result := services.NewScenarioValidator().ValidateScenario(sc)
	if result.Valid() {
		fmt.Fprintf(w, "✅ Scenario %s is valid (%d weeks, %d products, %d channels, %d regions)\n",
			sc.Name, sc.Weeks.Len(), len(sc.Products), len(sc.ChannelDemand.Segments), len(sc.RegionDemand.Segments))
		return nil
	}

	fmt.Fprintf(w, "❌ Scenario %s has problems:\n", sc.Name)
	for _, problem := range result.ShapeProblems {
		fmt.Fprintf(w, "  shape: %s\n", problem)
	}
	for _, problem := range result.ValueProblems {
		fmt.Fprintf(w, "  value: %s\n", problem)
	}

	return result.Err()
}
