package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/alloc/pkg/application/dto"
	"github.com/vsinha/alloc/pkg/domain/entities"
)

// Output file names
const (
	ProductCSV  = "product_allocation.csv"
	ChannelCSV  = "channel_allocation.csv"
	RegionCSV   = "region_allocation.csv"
	ResultsJSON = "allocation_results.json"
	ResultsXLSX = "allocation_results.xlsx"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Out receives console output; os.Stdout when nil
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate creates output in the specified format
func Generate(run *dto.AllocationRun, config Config) error {
	if run == nil || run.Products == nil || run.Channels == nil || run.Regions == nil {
		return fmt.Errorf("allocation run is incomplete")
	}

	switch config.Format {
	case "text", "":
		return generateTextOutput(run, config)
	case "json":
		return generateJSONOutput(run, config)
	case "csv":
		return generateCSVOutput(run, config)
	case "xlsx":
		return generateXLSXOutput(run, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// table is one stage's allocation laid out as name x week
type table struct {
	title string
	kind  string
	weeks []string
	names []string
	cells [][]string
}

func productTable(run *dto.AllocationRun) table {
	a := run.Products.Allocation
	t := table{title: "Product Allocation", kind: "product", weeks: a.Weeks.Strings()}
	for _, p := range a.Products {
		t.names = append(t.names, string(p))
		row := make([]string, len(a.Weeks))
		for i, q := range a.Series(p) {
			row[i] = strconv.FormatInt(int64(q), 10)
		}
		t.cells = append(t.cells, row)
	}
	return t
}

func segmentTable(title, kind string, a *entities.SegmentAllocation) table {
	t := table{title: title, kind: kind, weeks: a.Weeks.Strings()}
	for _, s := range a.Segments {
		t.names = append(t.names, s)
		row := make([]string, len(a.Weeks))
		for i, q := range a.Series(s) {
			row[i] = q.String()
		}
		t.cells = append(t.cells, row)
	}
	return t
}

func tables(run *dto.AllocationRun) []table {
	return []table{
		productTable(run),
		segmentTable("Channel Allocation", "channel", run.Channels.Allocation),
		segmentTable("Region Allocation", "region", run.Regions.Allocation),
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(run *dto.AllocationRun, config Config) error {
	w := config.out()

	fmt.Fprintf(w, "📊 Allocation Results: %s\n", run.Scenario)
	fmt.Fprintf(w, "==============================\n\n")
	fmt.Fprintf(w, "Run ID: %s\n", run.RunID)
	fmt.Fprintf(w, "Total Time: %v\n\n", run.Duration)

	fmt.Fprintf(w, "%-10s %-20s %-10s %-14s %-6s %-6s %-6s\n",
		"Stage", "Model", "Status", "Objective", "Vars", "Cons", "Nodes")
	for _, r := range run.Stages() {
		fmt.Fprintf(w, "%-10s %-20s %-10s %-14.4f %-6d %-6d %-6d\n",
			r.Stage, r.Model, r.Status, r.Objective, r.Variables, r.Constraints, r.Nodes)
	}
	fmt.Fprintln(w)

	for _, t := range tables(run) {
		fmt.Fprintf(w, "📦 %s:\n", t.title)
		fmt.Fprintf(w, "%-15s", cases(t.kind))
		for _, week := range t.weeks {
			fmt.Fprintf(w, " %10s", week)
		}
		fmt.Fprintln(w)
		for i, name := range t.names {
			fmt.Fprintf(w, "%-15s", name)
			for _, cell := range t.cells[i] {
				fmt.Fprintf(w, " %10s", cell)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if config.Verbose {
		fmt.Fprintf(w, "📈 Inventory Positions:\n")
		fmt.Fprintf(w, "%-15s %-8s %-10s %-10s %-10s %-8s\n",
			"Product", "Week", "Build", "Demand", "On Hand", "WOS")
		for _, pos := range run.Products.Positions {
			fmt.Fprintf(w, "%-15s %-8s %-10d %-10d %-10d %-8s\n",
				pos.ProductID, pos.Week, pos.CumulativeBuild, pos.CumulativeDemand, pos.OnHand, formatWOS(pos.WeeksOfSupply))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// RunDocument is the JSON shape of an allocation run
type RunDocument struct {
	RunID     string               `json:"run_id"`
	Scenario  string               `json:"scenario"`
	Duration  string               `json:"duration"`
	Stages    []dto.StageReport    `json:"stages"`
	Weeks     []string             `json:"weeks"`
	Products  map[string][]int64   `json:"product_allocation"`
	Shortfall map[string][]float64 `json:"shortfall,omitempty"`
	Channels  map[string][]string  `json:"channel_allocation"`
	Regions   map[string][]string  `json:"region_allocation"`
	Positions []PositionDocument   `json:"inventory_positions"`
}

// PositionDocument is one inventory position. WeeksOfSupply is null when no
// further demand is expected.
type PositionDocument struct {
	Product       string   `json:"product"`
	Week          string   `json:"week"`
	Build         int64    `json:"cumulative_build"`
	Demand        int64    `json:"cumulative_demand"`
	OnHand        int64    `json:"on_hand"`
	WeeksOfSupply *float64 `json:"weeks_of_supply"`
}

// NewRunDocument converts a run into its JSON document
func NewRunDocument(run *dto.AllocationRun) RunDocument {
	doc := RunDocument{
		RunID:    run.RunID,
		Scenario: run.Scenario,
		Duration: run.Duration.String(),
		Stages:   run.Stages(),
		Weeks:    run.Products.Allocation.Weeks.Strings(),
		Products: make(map[string][]int64),
		Channels: make(map[string][]string),
		Regions:  make(map[string][]string),
	}

	for _, p := range run.Products.Allocation.Products {
		series := make([]int64, len(doc.Weeks))
		for i, q := range run.Products.Allocation.Series(p) {
			series[i] = int64(q)
		}
		doc.Products[string(p)] = series
	}
	channels := segmentTable("", "channel", run.Channels.Allocation)
	for i, name := range channels.names {
		doc.Channels[name] = channels.cells[i]
	}
	regions := segmentTable("", "region", run.Regions.Allocation)
	for i, name := range regions.names {
		doc.Regions[name] = regions.cells[i]
	}

	if len(run.Products.Allocation.Shortfall) > 0 {
		doc.Shortfall = make(map[string][]float64)
		for p, series := range run.Products.Allocation.Shortfall {
			doc.Shortfall[string(p)] = series
		}
	}

	for _, pos := range run.Products.Positions {
		pd := PositionDocument{
			Product: string(pos.ProductID),
			Week:    string(pos.Week),
			Build:   int64(pos.CumulativeBuild),
			Demand:  int64(pos.CumulativeDemand),
			OnHand:  int64(pos.OnHand),
		}
		if !math.IsInf(pos.WeeksOfSupply, 0) && !math.IsNaN(pos.WeeksOfSupply) {
			wos := pos.WeeksOfSupply
			pd.WeeksOfSupply = &wos
		}
		doc.Positions = append(doc.Positions, pd)
	}

	return doc
}

// generateJSONOutput creates JSON output
func generateJSONOutput(run *dto.AllocationRun, config Config) error {
	jsonData, err := json.MarshalIndent(NewRunDocument(run), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, ResultsJSON)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one name,week,units file per stage
func generateCSVOutput(run *dto.AllocationRun, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []string{ProductCSV, ChannelCSV, RegionCSV}
	for i, t := range tables(run) {
		filename := filepath.Join(config.OutputDir, files[i])
		if err := writeTableCSV(t, filename); err != nil {
			return fmt.Errorf("failed to write %s allocation CSV: %w", t.kind, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.out(), "💾 %s saved to: %s\n", t.title, filename)
		}
	}

	return nil
}

func writeTableCSV(t table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{t.kind, "week", "units"}); err != nil {
		return err
	}
	for i, name := range t.names {
		for j, week := range t.weeks {
			if err := writer.Write([]string{name, week, t.cells[i][j]}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatWOS(wos float64) string {
	if math.IsInf(wos, 1) {
		return "inf"
	}
	return strconv.FormatFloat(wos, 'f', 2, 64)
}

func cases(kind string) string {
	switch kind {
	case "product":
		return "Product"
	case "channel":
		return "Channel"
	default:
		return "Region"
	}
}

// numeric converts a rendered cell back to a number for spreadsheet output
func numeric(cell string) interface{} {
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}
