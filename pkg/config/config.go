// Package config reads run configuration from an optional file, ALLOC_*
// environment variables and built-in defaults, in falling order of priority.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
)

// EnvPrefix prefixes every environment variable, e.g. ALLOC_ALLOCATION_WOS_FLOOR
const EnvPrefix = "ALLOC"

// Config groups the application configuration
type Config struct {
	Allocation AllocationConfig
	Solver     SolverConfig
	Log        LogConfig
}

// AllocationConfig holds the allocation model policy
type AllocationConfig struct {
	WOSFloor             float64
	SoftPenalty          float64
	AllowHardShortfall   bool
	HardPenalty          float64
	Lookahead            string
	SupplyPolicy         string
	FirstWeekIncremental string
	DecimalPlaces        int
	ComputeIIS           bool
}

// SolverConfig selects and tunes the solver backend
type SolverConfig struct {
	Backend              string
	Tolerance            float64
	IntegralityTolerance float64
	MaxNodes             int
}

// LogConfig configures the logger
type LogConfig struct {
	Env   string
	Level string
}

func setDefaults(v *viper.Viper) {
	policy := allocation.DefaultPolicy()
	v.SetDefault("allocation.wos_floor", policy.WOSFloor)
	v.SetDefault("allocation.soft_penalty", policy.SoftPenalty)
	v.SetDefault("allocation.allow_hard_shortfall", policy.AllowHardShortfall)
	v.SetDefault("allocation.hard_penalty", policy.HardPenalty)
	v.SetDefault("allocation.lookahead", string(policy.Lookahead))
	v.SetDefault("allocation.supply_policy", string(policy.Supply))
	v.SetDefault("allocation.first_week_incremental", string(entities.FirstWeekZero))
	v.SetDefault("allocation.decimal_places", policy.DecimalPlaces)
	v.SetDefault("allocation.compute_iis", policy.ComputeIIS)

	opts := solver.DefaultOptions()
	v.SetDefault("solver.backend", opts.Backend)
	v.SetDefault("solver.tolerance", opts.Tolerance)
	v.SetDefault("solver.integrality_tolerance", opts.IntegralityTolerance)
	v.SetDefault("solver.max_nodes", opts.MaxNodes)

	v.SetDefault("log.env", "production")
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path may be empty; otherwise the file must
// exist and its extension (yaml, yml, toml, json) selects the format.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Allocation: AllocationConfig{
			WOSFloor:             v.GetFloat64("allocation.wos_floor"),
			SoftPenalty:          v.GetFloat64("allocation.soft_penalty"),
			AllowHardShortfall:   v.GetBool("allocation.allow_hard_shortfall"),
			HardPenalty:          v.GetFloat64("allocation.hard_penalty"),
			Lookahead:            v.GetString("allocation.lookahead"),
			SupplyPolicy:         v.GetString("allocation.supply_policy"),
			FirstWeekIncremental: v.GetString("allocation.first_week_incremental"),
			DecimalPlaces:        v.GetInt("allocation.decimal_places"),
			ComputeIIS:           v.GetBool("allocation.compute_iis"),
		},
		Solver: SolverConfig{
			Backend:              v.GetString("solver.backend"),
			Tolerance:            v.GetFloat64("solver.tolerance"),
			IntegralityTolerance: v.GetFloat64("solver.integrality_tolerance"),
			MaxNodes:             v.GetInt("solver.max_nodes"),
		},
		Log: LogConfig{
			Env:   v.GetString("log.env"),
			Level: v.GetString("log.level"),
		},
	}

	return cfg, nil
}

// Policy converts the allocation section into a validated allocation policy
func (c AllocationConfig) Policy() (allocation.Policy, error) {
	lookahead, err := allocation.ParseLookaheadPolicy(c.Lookahead)
	if err != nil {
		return allocation.Policy{}, err
	}
	supply, err := allocation.ParseSupplyPolicy(c.SupplyPolicy)
	if err != nil {
		return allocation.Policy{}, err
	}

	policy := allocation.Policy{
		WOSFloor:           c.WOSFloor,
		SoftPenalty:        c.SoftPenalty,
		AllowHardShortfall: c.AllowHardShortfall,
		HardPenalty:        c.HardPenalty,
		Lookahead:          lookahead,
		Supply:             supply,
		DecimalPlaces:      int32(c.DecimalPlaces),
		ComputeIIS:         c.ComputeIIS,
	}
	if err := policy.Validate(); err != nil {
		return allocation.Policy{}, err
	}
	return policy, nil
}

// FirstWeek parses the week-0 incremental demand rule
func (c AllocationConfig) FirstWeek() (entities.FirstWeekIncrement, error) {
	return entities.ParseFirstWeekIncrement(c.FirstWeekIncremental)
}

// Options converts the solver section into backend options
func (c SolverConfig) Options() solver.Options {
	return solver.Options{
		Backend:              c.Backend,
		Tolerance:            c.Tolerance,
		IntegralityTolerance: c.IntegralityTolerance,
		MaxNodes:             c.MaxNodes,
	}
}
