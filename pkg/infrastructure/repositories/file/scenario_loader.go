// Package file loads a whole allocation scenario from one YAML, TOML or JSON document.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/alloc/pkg/domain/entities"
)

// ScenarioDocument is the on-disk layout of a scenario file
type ScenarioDocument struct {
	Name            string            `yaml:"name" toml:"name" json:"name"`
	Weeks           []string          `yaml:"weeks" toml:"weeks" json:"weeks"`
	Supply          []int64           `yaml:"supply" toml:"supply" json:"supply"`
	Products        []ProductDocument `yaml:"products" toml:"products" json:"products"`
	FocusProduct    string            `yaml:"focus_product" toml:"focus_product" json:"focus_product"`
	ChannelPriority []string          `yaml:"channel_priority" toml:"channel_priority" json:"channel_priority"`
	PartnerChannel  string            `yaml:"partner_channel" toml:"partner_channel" json:"partner_channel"`
	ChannelDemand   []SegmentDocument `yaml:"channel_demand" toml:"channel_demand" json:"channel_demand"`
	RegionDemand    []SegmentDocument `yaml:"region_demand" toml:"region_demand" json:"region_demand"`
}

// ProductDocument describes one product line. IncrementalDemand is optional;
// when omitted it is derived from CumulativeDemand.
type ProductDocument struct {
	ID                string  `yaml:"id" toml:"id" json:"id"`
	Kind              string  `yaml:"kind" toml:"kind" json:"kind"`
	BaseBuild         int64   `yaml:"base_build" toml:"base_build" json:"base_build"`
	CumulativeDemand  []int64 `yaml:"cumulative_demand" toml:"cumulative_demand" json:"cumulative_demand"`
	IncrementalDemand []int64 `yaml:"incremental_demand,omitempty" toml:"incremental_demand,omitempty" json:"incremental_demand,omitempty"`
}

// SegmentDocument is one channel or region demand series
type SegmentDocument struct {
	Name  string    `yaml:"name" toml:"name" json:"name"`
	Units []float64 `yaml:"units" toml:"units" json:"units"`
}

// Loader reads scenario documents
type Loader struct {
	firstWeek entities.FirstWeekIncrement
}

// NewLoader creates a scenario file loader
func NewLoader(firstWeek entities.FirstWeekIncrement) *Loader {
	return &Loader{firstWeek: firstWeek}
}

// LoadScenario reads a scenario file, picking the decoder from the extension
func (l *Loader) LoadScenario(path string) (*entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return l.Build(doc)
}

// Decode parses a scenario document. ext is a file extension such as ".yaml".
func Decode(data []byte, ext string) (*ScenarioDocument, error) {
	var doc ScenarioDocument
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing scenario YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing scenario TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing scenario JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario file extension %q (expected .yaml, .yml, .toml or .json)", ext)
	}
	return &doc, nil
}

// Build converts a decoded document into a scenario. Only per-field parsing
// happens here; cross-table shape checks belong to the scenario validator.
func (l *Loader) Build(doc *ScenarioDocument) (*entities.Scenario, error) {
	weeks, err := entities.NewWeekIndex(doc.Weeks...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", doc.Name, err)
	}

	supply := make([]entities.Quantity, len(doc.Supply))
	for i, u := range doc.Supply {
		supply[i] = entities.Quantity(u)
	}

	products := make([]entities.Product, 0, len(doc.Products))
	base := make(entities.BaseBuild, len(doc.Products))
	cumulative := make(map[entities.ProductID][]entities.Quantity, len(doc.Products))
	incremental := make(map[entities.ProductID][]entities.Quantity)
	for i, pd := range doc.Products {
		kind, err := entities.ParseDemandKind(pd.Kind)
		if err != nil {
			return nil, fmt.Errorf("scenario %s product %d: %w", doc.Name, i, err)
		}
		product, err := entities.NewProduct(entities.ProductID(pd.ID), kind)
		if err != nil {
			return nil, fmt.Errorf("scenario %s product %d: %w", doc.Name, i, err)
		}
		products = append(products, *product)
		base[product.ID] = entities.Quantity(pd.BaseBuild)
		cumulative[product.ID] = quantities(pd.CumulativeDemand)
		if pd.IncrementalDemand != nil {
			incremental[product.ID] = quantities(pd.IncrementalDemand)
		}
	}

	demand := entities.NewDemandForecast(weeks, cumulative, l.firstWeek)
	for p, series := range incremental {
		demand.Incremental[p] = series
	}

	return &entities.Scenario{
		Name:            doc.Name,
		Weeks:           weeks,
		Supply:          entities.NewSupplyPlan(weeks, supply),
		Products:        products,
		Base:            base,
		Demand:          demand,
		FocusProduct:    entities.ProductID(doc.FocusProduct),
		ChannelDemand:   segmentDemand(weeks, doc.ChannelDemand),
		ChannelPriority: doc.ChannelPriority,
		PartnerChannel:  doc.PartnerChannel,
		RegionDemand:    segmentDemand(weeks, doc.RegionDemand),
	}, nil
}

func quantities(values []int64) []entities.Quantity {
	out := make([]entities.Quantity, len(values))
	for i, v := range values {
		out[i] = entities.Quantity(v)
	}
	return out
}

func segmentDemand(weeks entities.WeekIndex, docs []SegmentDocument) *entities.SegmentDemand {
	if len(docs) == 0 {
		return nil
	}
	demand := &entities.SegmentDemand{
		Weeks:    weeks,
		Segments: make([]string, 0, len(docs)),
		Units:    make(map[string][]decimal.Decimal, len(docs)),
	}
	for _, sd := range docs {
		demand.Segments = append(demand.Segments, sd.Name)
		series := make([]decimal.Decimal, len(sd.Units))
		for i, u := range sd.Units {
			series[i] = decimal.NewFromFloat(u)
		}
		demand.Units[sd.Name] = series
	}
	return demand
}
