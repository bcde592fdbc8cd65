package report

import (
	"fmt"
	"io"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/domain/ledger"

	"github.com/xuri/excelize/v2"
)

const sheet = "Statement"

var headings = []string{"Date", "Type", "Description", "Document", "Credit", "Debit", "Balance", "Responsible"}

// XLSX arma la planilla del extracto: encabezado, una fila por lanzado y fila de totales.
func XLSX(c cases.Case, l ledger.Ledger) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	numFmt := "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", c.Number, c.SubjectName))
	_ = f.SetCellStyle(sheet, "A1", "A1", bold)

	// Add headers
	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A3", "H3", bold)

	// Add data
	rowNo := 4
	for _, row := range l.Posted {
		e := row.Entry
		values := []any{
			deadline.FormatDate(e.Date),
			e.Type.Label(),
			e.Description,
			e.DocumentNumber,
			e.Credit.InexactFloat64(),
			e.Debit.InexactFloat64(),
			row.Running.InexactFloat64(),
			e.Responsible,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNo)
			_ = f.SetCellValue(sheet, cell, v)
		}
		rowNo++
	}

	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNo), "Totals")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNo), l.TotalCredit.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", rowNo), l.TotalDebit.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", rowNo), l.Balance.InexactFloat64())
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNo), fmt.Sprintf("H%d", rowNo), bold)
	_ = f.SetCellStyle(sheet, "E4", fmt.Sprintf("G%d", rowNo), amount)

	_ = f.SetColWidth(sheet, "C", "C", 48)
	return f, nil
}

// WriteXLSX escribe la planilla en w.
func WriteXLSX(w io.Writer, c cases.Case, l ledger.Ledger) error {
	f, err := XLSX(c, l)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
