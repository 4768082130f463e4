package csv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/alloc/pkg/domain"
	"github.com/vsinha/alloc/pkg/domain/entities"
)

var sampleFiles = map[string]string{
	ScenarioFile: `key,value
name,superman-plus
focus_product,SupermanPlus
channel_priority,Online>Retail>Reseller
partner_channel,Reseller
`,
	SupplyFile: `week,units
wk2,230
wk3,270
wk4,320
wk5,380
`,
	ProductsFile: `product,kind
Superman,hard
SupermanPlus,soft
SupermanMini,hard
`,
	BaseBuildFile: `product,units
Superman,70
SupermanPlus,70
SupermanMini,60
`,
	DemandFile: `product,week,cumulative
Superman,wk2,85
Superman,wk3,100
Superman,wk4,110
Superman,wk5,120
SupermanPlus,wk2,85
SupermanPlus,wk3,120
SupermanPlus,wk4,150
SupermanPlus,wk5,175
SupermanMini,wk2,40
SupermanMini,wk3,60
SupermanMini,wk4,70
SupermanMini,wk5,75
`,
	ChannelDemandFile: `channel,week,units
Online,wk2,20
Online,wk3,30
Online,wk4,40
Online,wk5,50
Retail,wk2,15
Retail,wk3,25
Retail,wk4,30
Retail,wk5,35
Reseller,wk2,50
Reseller,wk3,65
Reseller,wk4,80
Reseller,wk5,90
`,
	RegionDemandFile: `region,week,units
PAC,wk2,25
AMR,wk2,20
Europe,wk2,5
AMR,wk3,25
Europe,wk3,10
PAC,wk3,30
AMR,wk4,30
Europe,wk4,15
PAC,wk4,35
AMR,wk5,35
Europe,wk5,15
PAC,wk5,40.5
`,
}

func writeScenario(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range sampleFiles {
		if override, ok := overrides[name]; ok {
			content = override
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoader_LoadScenario(t *testing.T) {
	dir := writeScenario(t, nil)

	sc, err := NewLoader(entities.FirstWeekZero).LoadScenario(dir)
	require.NoError(t, err)

	assert.Equal(t, "superman-plus", sc.Name)
	assert.Equal(t, []string{"wk2", "wk3", "wk4", "wk5"}, sc.Weeks.Strings())
	assert.Equal(t, entities.Quantity(1200), sc.Supply.Total())
	assert.Equal(t, []entities.ProductID{"Superman", "SupermanPlus", "SupermanMini"}, sc.ProductIDs())

	plus, ok := sc.Product("SupermanPlus")
	require.True(t, ok)
	assert.Equal(t, entities.SoftDemand, plus.Kind)

	assert.Equal(t, entities.Quantity(60), sc.Base["SupermanMini"])
	assert.Equal(t, []entities.Quantity{85, 120, 150, 175}, sc.Demand.Cumulative["SupermanPlus"])
	assert.Equal(t, []entities.Quantity{0, 35, 30, 25}, sc.Demand.Incremental["SupermanPlus"])

	assert.Equal(t, entities.ProductID("SupermanPlus"), sc.FocusProduct)
	assert.Equal(t, []string{"Online", "Retail", "Reseller"}, sc.ChannelPriority)
	assert.Equal(t, "Reseller", sc.PartnerChannel)

	assert.Equal(t, []string{"Online", "Retail", "Reseller"}, sc.ChannelDemand.Segments)
	// Segments follow their first appearance, not the alphabet
	assert.Equal(t, []string{"PAC", "AMR", "Europe"}, sc.RegionDemand.Segments)
	assert.Equal(t, "40.5", sc.RegionDemand.At("PAC", 3).String())
}

func TestLoader_FirstWeekIncrement(t *testing.T) {
	dir := writeScenario(t, nil)

	sc, err := NewLoader(entities.FirstWeekPinned).LoadScenario(dir)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(35), sc.Demand.IncrementalAt("SupermanPlus", 0))
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		overrides map[string]string
		shape     bool
		contains  string
	}{
		{
			name:      "header mismatch",
			overrides: map[string]string{SupplyFile: "week,qty\nwk2,10\n"},
			contains:  "supply CSV header mismatch",
		},
		{
			name:      "no data rows",
			overrides: map[string]string{ProductsFile: "product,kind\n"},
			contains:  "products CSV must have header and at least one data row",
		},
		{
			name:      "bad quantity",
			overrides: map[string]string{BaseBuildFile: "product,units\nSuperman,lots\n"},
			contains:  "base build CSV row 2",
		},
		{
			name:      "unknown kind",
			overrides: map[string]string{ProductsFile: "product,kind\nSuperman,firm\n"},
			contains:  "products CSV row 2",
		},
		{
			name:      "unknown setting",
			overrides: map[string]string{ScenarioFile: "key,value\ncolour,blue\n"},
			contains:  "unknown key",
		},
		{
			name:      "unknown week",
			overrides: map[string]string{ChannelDemandFile: "channel,week,units\nOnline,wk9,20\n"},
			shape:     true,
			contains:  "channel demand CSV row 2",
		},
		{
			name:      "missing week",
			overrides: map[string]string{DemandFile: "product,week,cumulative\nSuperman,wk2,85\n"},
			shape:     true,
			contains:  "product Superman has no demand",
		},
		{
			name:      "duplicate entry",
			overrides: map[string]string{RegionDemandFile: "region,week,units\nAMR,wk2,1\nAMR,wk2,2\n"},
			contains:  "duplicate entry",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeScenario(t, tc.overrides)

			_, err := NewLoader(entities.FirstWeekZero).LoadScenario(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
			assert.Equal(t, tc.shape, errors.Is(err, domain.ErrInputShapeMismatch))
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	dir := writeScenario(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, RegionDemandFile)))

	_, err := NewLoader(entities.FirstWeekZero).LoadScenario(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open region demand file")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Online", "Retail"}, splitList(" Online > Retail "))
	assert.Equal(t, []string{"a", "b"}, splitList("a;;b"))
	assert.Nil(t, splitList("  "))
}
