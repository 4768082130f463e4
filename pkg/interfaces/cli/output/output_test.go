package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/application/services/orchestration"
	"github.com/vsinha/alloc/pkg/infrastructure/solver"
	testhelpers "github.com/vsinha/alloc/pkg/infrastructure/testing"
)

func sampleRun(t *testing.T) *dto.AllocationRun {
	t.Helper()
	pipeline, err := orchestration.NewAllocationPipeline(
		solver.NewSimplexSolver(solver.DefaultOptions()),
		allocation.DefaultPolicy(),
		nil,
		zerolog.Nop(),
	)
	require.NoError(t, err)

	run, err := pipeline.Run(context.Background(), testhelpers.BuildSupermanPlusScenario())
	require.NoError(t, err)
	return run
}

func TestGenerate_Text(t *testing.T) {
	run := sampleRun(t)
	var buf bytes.Buffer

	require.NoError(t, Generate(run, Config{Format: "text", Verbose: true, Out: &buf}))

	text := buf.String()
	assert.Contains(t, text, "Allocation Results: superman-plus")
	assert.Contains(t, text, "ProductAllocation")
	assert.Contains(t, text, "SupermanPlus")
	assert.Contains(t, text, "Reseller")
	assert.Contains(t, text, "Europe")
	assert.Contains(t, text, "Inventory Positions")
}

func TestGenerate_JSON(t *testing.T) {
	run := sampleRun(t)
	var buf bytes.Buffer

	require.NoError(t, Generate(run, Config{Format: "json", Out: &buf}))

	var doc RunDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, run.RunID, doc.RunID)
	assert.Equal(t, []string{"wk2", "wk3", "wk4", "wk5"}, doc.Weeks)
	assert.Len(t, doc.Stages, 3)
	assert.Len(t, doc.Products, 3)
	assert.Len(t, doc.Channels, 3)
	assert.Len(t, doc.Regions, 3)
	assert.Len(t, doc.Positions, 12)

	var total int64
	for _, series := range doc.Products {
		for _, q := range series {
			total += q
		}
	}
	assert.Equal(t, int64(1200), total)
}

func TestGenerate_JSONToFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Generate(sampleRun(t), Config{Format: "json", OutputDir: dir}))

	_, err := os.Stat(filepath.Join(dir, ResultsJSON))
	assert.NoError(t, err)
}

func TestGenerate_CSV(t *testing.T) {
	run := sampleRun(t)
	dir := t.TempDir()

	require.NoError(t, Generate(run, Config{Format: "csv", OutputDir: dir}))

	expected := map[string]string{ProductCSV: "product", ChannelCSV: "channel", RegionCSV: "region"}
	for name, kind := range expected {
		file, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		records, err := csv.NewReader(file).ReadAll()
		file.Close()
		require.NoError(t, err)

		assert.Equal(t, []string{kind, "week", "units"}, records[0], name)
		assert.Len(t, records, 1+3*4, name)
	}

	assert.ErrorContains(t, Generate(run, Config{Format: "csv"}), "output directory required")
}

func TestGenerate_XLSX(t *testing.T) {
	run := sampleRun(t)
	dir := t.TempDir()

	require.NoError(t, Generate(run, Config{Format: "xlsx", OutputDir: dir}))

	f, err := excelize.OpenFile(filepath.Join(dir, ResultsXLSX))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StagesSheet, ProductSheet, ChannelSheet, RegionSheet, PositionSheet}, f.GetSheetList())

	stages, err := f.GetRows(StagesSheet)
	require.NoError(t, err)
	require.Len(t, stages, 4)
	assert.Equal(t, "product", stages[1][0])
	assert.Equal(t, "optimal", stages[1][2])

	products, err := f.GetRows(ProductSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Product", "wk2", "wk3", "wk4", "wk5"}, products[0])
	assert.Len(t, products, 4)
}

func TestGenerate_Errors(t *testing.T) {
	assert.ErrorContains(t, Generate(sampleRun(t), Config{Format: "pdf"}), "unsupported output format")
	assert.ErrorContains(t, Generate(&dto.AllocationRun{}, Config{Format: "text"}), "incomplete")
}

func TestFormatWOS(t *testing.T) {
	assert.Equal(t, "4.50", formatWOS(4.5))
	assert.Equal(t, "inf", formatWOS(math.Inf(1)))
}
