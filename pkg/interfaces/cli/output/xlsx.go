package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/alloc/pkg/application/dto"
)

// Workbook sheet names
const (
	StagesSheet   = "Stages"
	ProductSheet  = "Products"
	ChannelSheet  = "Channels"
	RegionSheet   = "Regions"
	PositionSheet = "Inventory"
)

// NewWorkbook lays out a run as one sheet per stage plus stage and inventory sheets
func NewWorkbook(run *dto.AllocationRun) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", StagesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	stageRows := [][]interface{}{
		{"Stage", "Model", "Status", "Objective", "Variables", "Constraints", "Nodes", "Duration"},
	}
	for _, r := range run.Stages() {
		stageRows = append(stageRows, []interface{}{
			r.Stage, r.Model, r.Status, r.Objective, r.Variables, r.Constraints, r.Nodes, r.Duration.String(),
		})
	}
	if err := writeRows(f, StagesSheet, stageRows, headerStyle); err != nil {
		return nil, err
	}

	sheets := []string{ProductSheet, ChannelSheet, RegionSheet}
	for i, t := range tables(run) {
		if _, err := f.NewSheet(sheets[i]); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheets[i], err)
		}

		header := []interface{}{cases(t.kind)}
		for _, week := range t.weeks {
			header = append(header, week)
		}
		rows := [][]interface{}{header}
		for j, name := range t.names {
			row := []interface{}{name}
			for _, cell := range t.cells[j] {
				row = append(row, numeric(cell))
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, sheets[i], rows, headerStyle); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(PositionSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", PositionSheet, err)
	}
	positionRows := [][]interface{}{
		{"Product", "Week", "Cumulative Build", "Cumulative Demand", "On Hand", "Weeks of Supply"},
	}
	for _, pos := range run.Products.Positions {
		positionRows = append(positionRows, []interface{}{
			string(pos.ProductID), string(pos.Week), int64(pos.CumulativeBuild), int64(pos.CumulativeDemand),
			int64(pos.OnHand), formatWOS(pos.WeeksOfSupply),
		})
	}
	if err := writeRows(f, PositionSheet, positionRows, headerStyle); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "A", 18)
}

// generateXLSXOutput writes the run to a spreadsheet
func generateXLSXOutput(run *dto.AllocationRun, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := NewWorkbook(run)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	filename := filepath.Join(config.OutputDir, ResultsXLSX)
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write xlsx file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}
