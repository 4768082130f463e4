package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
	"github.com/vsinha/alloc/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
	"github.com/vsinha/alloc/pkg/interfaces/cli/output"
)

func generateScenario(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenario")
	err := NewGenerateCommand(GenerateConfig{
		Products:  3,
		Weeks:     5,
		Channels:  3,
		Regions:   2,
		Supply:    1.2,
		OutputDir: dir,
		Seed:      42,
		Out:       &bytes.Buffer{},
	}).Execute(context.Background())
	require.NoError(t, err)
	return dir
}

func solveConfig(scenario string, out *bytes.Buffer) Config {
	return Config{
		Scenario:  scenario,
		Format:    "text",
		Policy:    allocation.DefaultPolicy(),
		FirstWeek: entities.FirstWeekZero,
		Solver:    solver.DefaultOptions(),
		Logger:    zerolog.Nop(),
		Out:       out,
	}
}

func TestGenerateCommand_WritesLoadableScenario(t *testing.T) {
	dir := generateScenario(t)

	for _, name := range []string{
		csv.ScenarioFile, csv.SupplyFile, csv.ProductsFile, csv.BaseBuildFile,
		csv.DemandFile, csv.ChannelDemandFile, csv.RegionDemandFile,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	sc, err := csv.NewLoader(entities.FirstWeekZero).LoadScenario(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, sc.Weeks.Len())
	assert.Len(t, sc.Products, 3)
	assert.Equal(t, entities.ProductID("PRODUCT_001"), sc.FocusProduct)
	assert.Equal(t, []string{"Channel_1", "Channel_2", "Channel_3"}, sc.ChannelPriority)
	assert.Equal(t, "Channel_3", sc.PartnerChannel)
}

func TestGenerateCommand_InvalidInputs(t *testing.T) {
	err := NewGenerateCommand(GenerateConfig{Products: 1, Weeks: 1, Channels: 1, Regions: 1, Supply: 1, OutputDir: t.TempDir()}).
		Execute(context.Background())
	assert.ErrorContains(t, err, "validation error")

	err = NewGenerateCommand(GenerateConfig{Products: 1, Weeks: 3, Channels: 1, Regions: 1, Supply: 0.5, OutputDir: t.TempDir()}).
		Execute(context.Background())
	assert.ErrorContains(t, err, "supply multiplier")
}

func TestSolveCommand_Text(t *testing.T) {
	dir := generateScenario(t)
	var out bytes.Buffer

	config := solveConfig(dir, &out)
	config.Verbose = true
	require.NoError(t, NewSolveCommand(config).Execute(context.Background()))

	text := out.String()
	assert.Contains(t, text, "product stage started")
	assert.Contains(t, text, "region stage optimal")
	assert.Contains(t, text, "3 stages completed")
	assert.Contains(t, text, "PRODUCT_002")
	assert.Contains(t, text, "Region_2")
}

func TestSolveCommand_CSV(t *testing.T) {
	dir := generateScenario(t)
	outDir := t.TempDir()

	config := solveConfig(dir, &bytes.Buffer{})
	config.Format = "csv"
	config.OutputDir = outDir
	require.NoError(t, NewSolveCommand(config).Execute(context.Background()))

	for _, name := range []string{output.ProductCSV, output.ChannelCSV, output.RegionCSV} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestSolveCommand_Infeasible(t *testing.T) {
	dir := generateScenario(t)
	var out bytes.Buffer

	config := solveConfig(dir, &out)
	config.Verbose = true
	config.Policy.WOSFloor = 50

	err := NewSolveCommand(config).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInfeasibleAllocation)
	assert.Contains(t, out.String(), "product stage failed")
	assert.Contains(t, out.String(), "conflict: total_supply")
}

func TestSolveCommand_InvalidInputs(t *testing.T) {
	var out bytes.Buffer

	config := solveConfig("", &out)
	assert.ErrorContains(t, NewSolveCommand(config).Execute(context.Background()), "scenario directory or file is required")

	config = solveConfig(generateScenario(t), &out)
	config.Format = "csv"
	assert.ErrorContains(t, NewSolveCommand(config).Execute(context.Background()), "output directory required")

	config.Format = "html"
	assert.ErrorContains(t, NewSolveCommand(config).Execute(context.Background()), "invalid format")

	config = solveConfig(generateScenario(t), &out)
	config.Solver.Backend = "gurobi"
	assert.ErrorIs(t, NewSolveCommand(config).Execute(context.Background()), domain.ErrSolverUnavailable)

	config = solveConfig(filepath.Join(t.TempDir(), "missing"), &out)
	assert.ErrorContains(t, NewSolveCommand(config).Execute(context.Background()), "scenario not found")
}

func TestValidateCommand(t *testing.T) {
	dir := generateScenario(t)
	var out bytes.Buffer

	require.NoError(t, NewValidateCommand(solveConfig(dir, &out)).Execute(context.Background()))
	assert.Contains(t, out.String(), "is valid (5 weeks, 3 products, 3 channels, 2 regions)")

	settings := "key,value\nname,broken\nfocus_product,PRODUCT_999\npartner_channel,Channel_1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, csv.ScenarioFile), []byte(settings), 0644))

	out.Reset()
	err := NewValidateCommand(solveConfig(dir, &out)).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrInputShapeMismatch)
	assert.Contains(t, out.String(), `shape: focus product "PRODUCT_999" is not a scenario product`)
}

func TestForecastCommand(t *testing.T) {
	params := filepath.Join("..", "..", "..", "forecast", "testdata", "superman_plus.yaml")
	var out bytes.Buffer

	require.NoError(t, NewForecastCommand(ForecastConfig{Params: params, Verbose: true, Out: &out}).Execute(context.Background()))
	assert.Contains(t, out.String(), "Forecast for SupermanPlus (PrincessPlus vs DwarfPlus)")
	assert.Contains(t, out.String(), "week,AMR,Europe,PAC")
	assert.Contains(t, out.String(), "SepWk3,296,124,188")

	outDir := t.TempDir()
	require.NoError(t, NewForecastCommand(ForecastConfig{Params: params, OutputDir: outDir, Out: &out}).Execute(context.Background()))
	data, err := os.ReadFile(filepath.Join(outDir, "SupermanPlus_forecast.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "DecWk4,89,50,100")

	assert.Error(t, NewForecastCommand(ForecastConfig{Out: &out}).Execute(context.Background()))
}
