package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	csvrepo "github.com/vsinha/alloc/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Products  int     // Number of products sharing the supply
	Weeks     int     // Plan horizon length
	Channels  int     // Channels of the focus product
	Regions   int     // Regions of the partner channel
	Supply    float64 // Supply multiplier over the minimum feasible supply (e.g., 1.0 = just enough, 2.0 = double)
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Verbose   bool    // Verbose output
	Out       io.Writer
}

// GenerateCommand writes a random scenario directory readable by the CSV loader
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// generatedProduct is one product's random demand picture
type generatedProduct struct {
	id         string
	kind       string
	base       int64
	cumulative []int64
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	w := cmd.config.Out
	if w == nil {
		w = os.Stdout
	}

	if cmd.config.Verbose {
		fmt.Fprintf(w, "🔧 Generating scenario with %d products, %d weeks, %d channels, %d regions, %.1fx supply\n",
			cmd.config.Products, cmd.config.Weeks, cmd.config.Channels, cmd.config.Regions, cmd.config.Supply)
		fmt.Fprintf(w, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	weeks := make([]string, cmd.config.Weeks)
	for i := range weeks {
		weeks[i] = fmt.Sprintf("wk%d", i+1)
	}
	products := cmd.generateProducts()
	channels := names("Channel", cmd.config.Channels)
	regions := names("Region", cmd.config.Regions)

	files := []struct {
		name string
		rows [][]string
	}{
		{csvrepo.ScenarioFile, cmd.settingsRows(products, channels)},
		{csvrepo.SupplyFile, cmd.supplyRows(weeks, products)},
		{csvrepo.ProductsFile, productRows(products)},
		{csvrepo.BaseBuildFile, baseRows(products)},
		{csvrepo.DemandFile, demandRows(weeks, products)},
		{csvrepo.ChannelDemandFile, cmd.segmentRows("channel", weeks, channels, 10, 60)},
		{csvrepo.RegionDemandFile, cmd.segmentRows("region", weeks, regions, 5, 40)},
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cmd.config.Verbose {
			fmt.Fprintf(w, "📦 Generating %s...\n", f.name)
		}
		if err := writeCSV(filepath.Join(cmd.config.OutputDir, f.name), f.rows); err != nil {
			return fmt.Errorf("failed to generate %s: %w", f.name, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(w, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validateInputs() error {
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if cmd.config.Products < 1 || cmd.config.Weeks < 2 || cmd.config.Channels < 1 || cmd.config.Regions < 1 {
		return fmt.Errorf("need at least 1 product, 2 weeks, 1 channel and 1 region")
	}
	if cmd.config.Supply < 1 {
		return fmt.Errorf("supply multiplier must be at least 1.0, got %.2f", cmd.config.Supply)
	}
	return nil
}

// generateProducts makes the first product the soft focus product
func (cmd *GenerateCommand) generateProducts() []generatedProduct {
	products := make([]generatedProduct, cmd.config.Products)
	for p := range products {
		cumulative := make([]int64, cmd.config.Weeks)
		cumulative[0] = int64(20 + cmd.rand.Intn(81))
		for i := 1; i < len(cumulative); i++ {
			cumulative[i] = cumulative[i-1] + int64(5+cmd.rand.Intn(46))
		}

		kind := "hard"
		if p == 0 {
			kind = "soft"
		}
		products[p] = generatedProduct{
			id:         fmt.Sprintf("PRODUCT_%03d", p+1),
			kind:       kind,
			base:       int64(cmd.rand.Intn(int(cumulative[0]) + 1)),
			cumulative: cumulative,
		}
	}
	return products
}

// minimumSupply is the supply that satisfies coverage and the default weeks of
// supply floor for every product in every week
func minimumSupply(products []generatedProduct) int64 {
	policy := allocation.DefaultPolicy()

	var total int64
	for _, p := range products {
		var need int64
		for i := range p.cumulative {
			var lookahead int64
			if i+1 < len(p.cumulative) {
				lookahead = p.cumulative[i+1] - p.cumulative[i]
			} else {
				lookahead = p.cumulative[i] - p.cumulative[i-1]
			}
			req := p.cumulative[i] + int64(math.Ceil(policy.WOSFloor*float64(lookahead))) - p.base
			if req > need {
				need = req
			}
		}
		total += need
	}
	return total
}

func (cmd *GenerateCommand) supplyRows(weeks []string, products []generatedProduct) [][]string {
	total := int64(math.Ceil(float64(minimumSupply(products)) * cmd.config.Supply))

	// Ramp supply up over the horizon: week i gets a share proportional to i+1
	n := int64(len(weeks))
	shares := n * (n + 1) / 2
	rows := [][]string{{"week", "units"}}
	var assigned int64
	for i, week := range weeks {
		units := total * int64(i+1) / shares
		if i == len(weeks)-1 {
			units = total - assigned
		}
		assigned += units
		rows = append(rows, []string{week, strconv.FormatInt(units, 10)})
	}
	return rows
}

func (cmd *GenerateCommand) settingsRows(products []generatedProduct, channels []string) [][]string {
	return [][]string{
		{"key", "value"},
		{"name", fmt.Sprintf("generated-%d", cmd.rand.Intn(100000))},
		{"focus_product", products[0].id},
		{"channel_priority", strings.Join(channels, ">")},
		{"partner_channel", channels[len(channels)-1]},
	}
}

func productRows(products []generatedProduct) [][]string {
	rows := [][]string{{"product", "kind"}}
	for _, p := range products {
		rows = append(rows, []string{p.id, p.kind})
	}
	return rows
}

func baseRows(products []generatedProduct) [][]string {
	rows := [][]string{{"product", "units"}}
	for _, p := range products {
		rows = append(rows, []string{p.id, strconv.FormatInt(p.base, 10)})
	}
	return rows
}

func demandRows(weeks []string, products []generatedProduct) [][]string {
	rows := [][]string{{"product", "week", "cumulative"}}
	for _, p := range products {
		for i, week := range weeks {
			rows = append(rows, []string{p.id, week, strconv.FormatInt(p.cumulative[i], 10)})
		}
	}
	return rows
}

func (cmd *GenerateCommand) segmentRows(kind string, weeks, segments []string, lo, hi int) [][]string {
	rows := [][]string{{kind, "week", "units"}}
	for _, seg := range segments {
		for _, week := range weeks {
			units := lo + cmd.rand.Intn(hi-lo+1)
			rows = append(rows, []string{seg, week, strconv.Itoa(units)})
		}
	}
	return rows
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	return out
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Sync()
}
