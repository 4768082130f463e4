package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/alloc/pkg/forecast"
)

// ForecastConfig holds configuration for the forecast command
type ForecastConfig struct {
	Params    string // YAML file with predecessor histories and prices
	OutputDir string // Directory for <product>_forecast.csv; stdout when empty
	Verbose   bool
	Out       io.Writer
}

// ForecastCommand derives a regional weekly forecast from predecessor sales
type ForecastCommand struct {
	config ForecastConfig
}

// NewForecastCommand creates a new forecast command
func NewForecastCommand(config ForecastConfig) *ForecastCommand {
	return &ForecastCommand{
		config: config,
	}
}

// Execute builds the forecast and writes it as CSV
func (c *ForecastCommand) Execute(ctx context.Context) error {
	w := c.config.Out
	if w == nil {
		w = os.Stdout
	}

	if c.config.Params == "" {
		return fmt.Errorf("validation error: a forecast params file is required")
	}

	params, err := forecast.LoadParams(c.config.Params)
	if err != nil {
		return err
	}

	f, err := forecast.Build(params)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Fprintf(w, "📈 Forecast for %s (%s vs %s)\n", f.Product, params.Baseline.Name, params.Reference.Name)
		for _, region := range f.Regions {
			fmt.Fprintf(w, "  %-10s elasticity %8s  multiplier %s\n",
				region, f.Elasticity[region].StringFixed(6), f.Multiplier[region].StringFixed(6))
		}
	}

	if c.config.OutputDir == "" {
		return f.WriteCSV(w)
	}

	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	name := f.Product
	if name == "" {
		name = "forecast"
	}
	filename := filepath.Join(c.config.OutputDir, name+"_forecast.csv")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create forecast file: %w", err)
	}
	defer file.Close()

	if err := f.WriteCSV(file); err != nil {
		return fmt.Errorf("failed to write forecast CSV: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(w, "💾 Forecast saved to: %s\n", filename)
	}
	return nil
}
