package intake

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/invoice-filler/internal/invoice"
)

// WorkbookSheet is the sheet holding the field id / value pairs
const WorkbookSheet = "Facture"

const (
	headerField   = "champ"
	headerValue   = "valeur"
	headerCaption = "libellé"
)

// LoadWorkbook reads a form from a two column spreadsheet: field id in column A,
// value in column B. The first sheet is used when there is no Facture sheet.
func LoadWorkbook(path string) (invoice.InvoiceForm, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return invoice.InvoiceForm{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := WorkbookSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return invoice.InvoiceForm{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return invoice.InvoiceForm{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	values := make(map[string]string)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" || (i == 0 && strings.EqualFold(id, headerField)) {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		values[id] = value
	}

	return FormFromValues(values), nil
}

// WriteBlankWorkbook writes a spreadsheet listing every field to fill, with
// the date prefilled
func WriteBlankWorkbook(path, date string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]string{{headerField, headerValue, headerCaption}}
	for _, l := range Labels {
		if l.ID == invoice.FieldTotalExclTax {
			// line items come before the totals
			for row := 1; row <= invoice.MaxLineItems; row++ {
				rows = append(rows,
					[]string{invoice.LabelField(row), "", fmt.Sprintf("Article %d : libellé", row)},
					[]string{invoice.QuantityField(row), "", fmt.Sprintf("Article %d : quantité", row)},
					[]string{invoice.UnitPriceField(row), "", fmt.Sprintf("Article %d : prix unitaire", row)},
				)
			}
		}
		value := ""
		if l.ID == invoice.FieldDate {
			value = date
		}
		rows = append(rows, []string{l.ID, value, l.Label})
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(WorkbookSheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(WorkbookSheet, "A1", "C1", style)
	}
	_ = f.SetColWidth(WorkbookSheet, "A", "A", 42)
	_ = f.SetColWidth(WorkbookSheet, "B", "B", 30)
	_ = f.SetColWidth(WorkbookSheet, "C", "C", 40)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
