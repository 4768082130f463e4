package repositories

import "github.com/vsinha/alloc/pkg/domain/entities"

// ScenarioRepository provides access to allocation scenarios by name
type ScenarioRepository interface {
	GetScenario(name string) (*entities.Scenario, error)
	ListScenarios() ([]string, error)
	SaveScenario(scenario *entities.Scenario) error
}
