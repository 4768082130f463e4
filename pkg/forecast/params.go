package forecast

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProductHistory is a predecessor product's launch price and weekly regional sales
type ProductHistory struct {
	Name  string             `yaml:"name"`
	Price float64            `yaml:"price"`
	Sales map[string][]int64 `yaml:"sales"`
}

// Params drives a forecast. Reference is the older predecessor; Baseline is the
// newer one whose weekly sales shape the forecast.
type Params struct {
	Product     string             `yaml:"product"`
	Regions     []string           `yaml:"regions"`
	Weeks       []string           `yaml:"weeks"`
	Reference   ProductHistory     `yaml:"reference"`
	Baseline    ProductHistory     `yaml:"baseline"`
	NewPrice    float64            `yaml:"new_price"`
	Seasonality map[string]float64 `yaml:"seasonality,omitempty"`
}

// DefaultSeasonality lifts the back-to-school and early autumn weeks
func DefaultSeasonality() map[string]float64 {
	return map[string]float64{
		"SepWk3": 1.25,
		"SepWk4": 1.25,
		"OctWk1": 1.15,
		"OctWk2": 1.15,
	}
}

// LoadParams reads forecast parameters from a YAML file
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forecast params: %w", err)
	}

	var params Params
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("parsing forecast params YAML: %w", err)
	}
	if params.Seasonality == nil {
		params.Seasonality = DefaultSeasonality()
	}

	return &params, nil
}

// Validate checks that every region has enough history to forecast every week
func (p *Params) Validate() error {
	if len(p.Regions) == 0 {
		return fmt.Errorf("forecast needs at least one region")
	}
	if len(p.Weeks) == 0 {
		return fmt.Errorf("forecast needs at least one week")
	}
	if p.Reference.Price <= 0 || p.Baseline.Price <= 0 || p.NewPrice <= 0 {
		return fmt.Errorf("prices must be positive (reference %v, baseline %v, new %v)",
			p.Reference.Price, p.Baseline.Price, p.NewPrice)
	}
	if p.Reference.Price == p.Baseline.Price {
		return fmt.Errorf("reference and baseline prices are equal; elasticity is undefined")
	}

	for _, region := range p.Regions {
		if len(p.Baseline.Sales[region]) < len(p.Weeks) {
			return fmt.Errorf("baseline %s has %d weeks of %s sales, need %d",
				p.Baseline.Name, len(p.Baseline.Sales[region]), region, len(p.Weeks))
		}
		if len(p.Reference.Sales[region]) == 0 {
			return fmt.Errorf("reference %s has no %s sales", p.Reference.Name, region)
		}
		var total int64
		for _, q := range p.Reference.Sales[region] {
			total += q
		}
		if total == 0 {
			return fmt.Errorf("reference %s has zero %s sales; elasticity is undefined", p.Reference.Name, region)
		}
	}
	return nil
}
