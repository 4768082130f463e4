package commands

import (
	"fmt"
	"os"

	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/domain/repositories"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/file"
)

// loadScenario reads a scenario from a CSV directory or a single YAML/TOML/JSON
// file, registers it with the repository and returns the stored copy.
func loadScenario(path string, first entities.FirstWeekIncrement, repo repositories.ScenarioRepository) (*entities.Scenario, error) {
	if path == "" {
		return nil, fmt.Errorf("scenario path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario not found: %w", err)
	}

	var sc *entities.Scenario
	if info.IsDir() {
		sc, err = csv.NewLoader(first).LoadScenario(path)
	} else {
		sc, err = file.NewLoader(first).LoadScenario(path)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading scenario: %w", err)
	}

	if err := repo.SaveScenario(sc); err != nil {
		return nil, fmt.Errorf("error storing scenario: %w", err)
	}
	return repo.GetScenario(sc.Name)
}
