package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/domain/repositories"
)

// ScenarioRepository provides in-memory scenario storage keyed by scenario name
type ScenarioRepository struct {
	mu        sync.RWMutex
	scenarios map[string]*entities.Scenario
}

// NewScenarioRepository creates a new in-memory scenario repository
func NewScenarioRepository() *ScenarioRepository {
	return &ScenarioRepository{
		scenarios: make(map[string]*entities.Scenario),
	}
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// SaveScenario stores a scenario. Names are unique.
func (r *ScenarioRepository) SaveScenario(scenario *entities.Scenario) error {
	if scenario == nil {
		return fmt.Errorf("scenario cannot be nil")
	}
	if scenario.Name == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[scenario.Name]; exists {
		return fmt.Errorf("duplicate scenario name: %s", scenario.Name)
	}
	r.scenarios[scenario.Name] = scenario
	return nil
}

// GetScenario returns a scenario by name
func (r *ScenarioRepository) GetScenario(name string) (*entities.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenario, exists := r.scenarios[name]
	if !exists {
		return nil, fmt.Errorf("scenario not found: %s", name)
	}
	return scenario, nil
}

// ListScenarios returns the stored scenario names in sorted order
func (r *ScenarioRepository) ListScenarios() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
