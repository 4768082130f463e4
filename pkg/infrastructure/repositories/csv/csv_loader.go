package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
)

// Scenario directory file names
const (
	ScenarioFile      = "scenario.csv"
	SupplyFile        = "supply.csv"
	ProductsFile      = "products.csv"
	BaseBuildFile     = "base_build.csv"
	DemandFile        = "demand.csv"
	ChannelDemandFile = "channel_demand.csv"
	RegionDemandFile  = "region_demand.csv"
)

// Loader handles loading allocation scenarios from a directory of CSV files
type Loader struct {
	firstWeek entities.FirstWeekIncrement
}

// NewLoader creates a new CSV loader. firstWeek decides week-0 incremental demand.
func NewLoader(firstWeek entities.FirstWeekIncrement) *Loader {
	return &Loader{firstWeek: firstWeek}
}

// LoadScenario loads every table of a scenario directory. Weeks follow the row
// order of supply.csv; products and segments follow their first appearance.
func (l *Loader) LoadScenario(dir string) (*entities.Scenario, error) {
	settings, err := l.LoadSettings(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, err
	}

	supply, err := l.LoadSupply(filepath.Join(dir, SupplyFile))
	if err != nil {
		return nil, err
	}
	weeks := supply.Weeks

	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}

	base, err := l.LoadBaseBuild(filepath.Join(dir, BaseBuildFile))
	if err != nil {
		return nil, err
	}

	demand, err := l.LoadDemand(filepath.Join(dir, DemandFile), weeks)
	if err != nil {
		return nil, err
	}

	channels, err := l.LoadSegmentDemand(filepath.Join(dir, ChannelDemandFile), "channel", weeks)
	if err != nil {
		return nil, err
	}

	regions, err := l.LoadSegmentDemand(filepath.Join(dir, RegionDemandFile), "region", weeks)
	if err != nil {
		return nil, err
	}

	name := settings["name"]
	if name == "" {
		name = filepath.Base(dir)
	}

	return &entities.Scenario{
		Name:            name,
		Weeks:           weeks,
		Supply:          supply,
		Products:        products,
		Base:            base,
		Demand:          demand,
		FocusProduct:    entities.ProductID(settings["focus_product"]),
		ChannelDemand:   channels,
		ChannelPriority: splitList(settings["channel_priority"]),
		PartnerChannel:  settings["partner_channel"],
		RegionDemand:    regions,
	}, nil
}

// LoadSettings loads the key,value scenario settings file
func (l *Loader) LoadSettings(filename string) (map[string]string, error) {
	records, err := readRecords(filename, "scenario", []string{"key", "value"})
	if err != nil {
		return nil, err
	}

	known := map[string]bool{"name": true, "focus_product": true, "channel_priority": true, "partner_channel": true}
	settings := make(map[string]string, len(records))
	for i, record := range records {
		key := strings.ToLower(strings.TrimSpace(record[0]))
		if !known[key] {
			return nil, fmt.Errorf("scenario CSV row %d: unknown key %q", i+2, record[0])
		}
		settings[key] = strings.TrimSpace(record[1])
	}
	return settings, nil
}

// LoadSupply loads week,units rows. The row order defines the plan horizon.
func (l *Loader) LoadSupply(filename string) (*entities.SupplyPlan, error) {
	records, err := readRecords(filename, "supply", []string{"week", "units"})
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(records))
	units := make([]entities.Quantity, 0, len(records))
	for i, record := range records {
		q, err := parseQuantity(record[1])
		if err != nil {
			return nil, fmt.Errorf("supply CSV row %d: %w", i+2, err)
		}
		labels = append(labels, strings.TrimSpace(record[0]))
		units = append(units, q)
	}

	weeks, err := entities.NewWeekIndex(labels...)
	if err != nil {
		return nil, fmt.Errorf("supply CSV: %w", err)
	}
	return entities.NewSupplyPlan(weeks, units), nil
}

// LoadProducts loads product,kind rows
func (l *Loader) LoadProducts(filename string) ([]entities.Product, error) {
	records, err := readRecords(filename, "products", []string{"product", "kind"})
	if err != nil {
		return nil, err
	}

	products := make([]entities.Product, 0, len(records))
	for i, record := range records {
		kind, err := entities.ParseDemandKind(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		product, err := entities.NewProduct(entities.ProductID(strings.TrimSpace(record[0])), kind)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, *product)
	}
	return products, nil
}

// LoadBaseBuild loads product,units rows
func (l *Loader) LoadBaseBuild(filename string) (entities.BaseBuild, error) {
	records, err := readRecords(filename, "base build", []string{"product", "units"})
	if err != nil {
		return nil, err
	}

	base := make(entities.BaseBuild, len(records))
	for i, record := range records {
		q, err := parseQuantity(record[1])
		if err != nil {
			return nil, fmt.Errorf("base build CSV row %d: %w", i+2, err)
		}
		p := entities.ProductID(strings.TrimSpace(record[0]))
		if _, dup := base[p]; dup {
			return nil, fmt.Errorf("base build CSV row %d: duplicate product %s", i+2, p)
		}
		base[p] = q
	}
	return base, nil
}

// LoadDemand loads product,week,cumulative rows and derives incremental demand
func (l *Loader) LoadDemand(filename string, weeks entities.WeekIndex) (*entities.DemandForecast, error) {
	records, err := readRecords(filename, "demand", []string{"product", "week", "cumulative"})
	if err != nil {
		return nil, err
	}

	cumulative := make(map[entities.ProductID][]entities.Quantity)
	filled := make(map[entities.ProductID][]bool)
	for i, record := range records {
		p := entities.ProductID(strings.TrimSpace(record[0]))
		pos, err := weekPosition(weeks, record[1])
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, err)
		}
		q, err := parseQuantity(record[2])
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, err)
		}

		if _, ok := cumulative[p]; !ok {
			cumulative[p] = make([]entities.Quantity, weeks.Len())
			filled[p] = make([]bool, weeks.Len())
		}
		if filled[p][pos] {
			return nil, fmt.Errorf("demand CSV row %d: duplicate entry for %s %s", i+2, p, weeks[pos])
		}
		cumulative[p][pos] = q
		filled[p][pos] = true
	}

	for p, cells := range filled {
		if missing := missingWeeks(weeks, cells); len(missing) > 0 {
			return nil, fmt.Errorf("demand CSV: %w: product %s has no demand for weeks %v", domain.ErrInputShapeMismatch, p, missing)
		}
	}

	return entities.NewDemandForecast(weeks, cumulative, l.firstWeek), nil
}

// LoadSegmentDemand loads <kind>,week,units rows for a channel or region breakdown
func (l *Loader) LoadSegmentDemand(filename, kind string, weeks entities.WeekIndex) (*entities.SegmentDemand, error) {
	records, err := readRecords(filename, kind+" demand", []string{kind, "week", "units"})
	if err != nil {
		return nil, err
	}

	demand := &entities.SegmentDemand{
		Weeks: weeks,
		Units: make(map[string][]decimal.Decimal),
	}
	filled := make(map[string][]bool)
	for i, record := range records {
		seg := strings.TrimSpace(record[0])
		pos, err := weekPosition(weeks, record[1])
		if err != nil {
			return nil, fmt.Errorf("%s demand CSV row %d: %w", kind, i+2, err)
		}
		units, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("%s demand CSV row %d: invalid units %q: %w", kind, i+2, record[2], err)
		}

		if _, ok := demand.Units[seg]; !ok {
			demand.Segments = append(demand.Segments, seg)
			series := make([]decimal.Decimal, weeks.Len())
			for j := range series {
				series[j] = decimal.Zero
			}
			demand.Units[seg] = series
			filled[seg] = make([]bool, weeks.Len())
		}
		if filled[seg][pos] {
			return nil, fmt.Errorf("%s demand CSV row %d: duplicate entry for %s %s", kind, i+2, seg, weeks[pos])
		}
		demand.Units[seg][pos] = units
		filled[seg][pos] = true
	}

	for _, seg := range demand.Segments {
		if missing := missingWeeks(weeks, filled[seg]); len(missing) > 0 {
			return nil, fmt.Errorf("%s demand CSV: %w: %s has no demand for weeks %v", kind, domain.ErrInputShapeMismatch, seg, missing)
		}
	}
	return demand, nil
}

// readRecords reads a CSV file and returns its data rows after checking the header
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseQuantity(s string) (entities.Quantity, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return entities.Quantity(v), nil
}

func weekPosition(weeks entities.WeekIndex, label string) (int, error) {
	pos, ok := weeks.Position(entities.WeekLabel(strings.TrimSpace(label)))
	if !ok {
		return 0, fmt.Errorf("%w: week %q is not in the supply plan", domain.ErrInputShapeMismatch, label)
	}
	return pos, nil
}

func missingWeeks(weeks entities.WeekIndex, filled []bool) []entities.WeekLabel {
	var missing []entities.WeekLabel
	for i, ok := range filled {
		if !ok {
			missing = append(missing, weeks[i])
		}
	}
	return missing
}

// splitList splits a priority list written as "a>b>c" or "a;b;c"
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '>' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
