package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXRenderer writes a workbook with one sheet per table. Amount cells are
// stored as numbers.
type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) Render(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	for i, t := range Tables(s) {
		if i == 0 {
			if err := f.SetSheetName(first, t.Name); err != nil {
				return nil, fmt.Errorf("name sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, t Table) error {
	for r, row := range t.Rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if t.IsAmount(r, c) {
				d, err := decimal.NewFromString(v)
				if err != nil {
					return fmt.Errorf("%s!%s: %w", t.Name, cell, err)
				}
				amount, _ := d.Float64()
				err = f.SetCellFloat(t.Name, cell, amount, -1, 64)
				if err != nil {
					return fmt.Errorf("%s!%s: %w", t.Name, cell, err)
				}
				continue
			}
			if err := f.SetCellStr(t.Name, cell, v); err != nil {
				return fmt.Errorf("%s!%s: %w", t.Name, cell, err)
			}
		}
	}
	return nil
}
