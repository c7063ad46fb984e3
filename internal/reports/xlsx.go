package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/church-console/backend/internal/store"
)

const currencyFormat = `"$"#,##0.00`

// sheet is one worksheet: a header row followed by data rows.
type sheet struct {
	name     string
	rows     [][]interface{}
	moneyCol string // column letter formatted as currency, if any
}

// Workbook writes the Members, Financial and Assets sheets.
func Workbook(w io.Writer, sn store.Snapshot) error {
	members := [][]interface{}{{"Name", "Email", "Phone", "Role", "Status", "Birth Date", "Baptized"}}
	for _, m := range sn.Members {
		members = append(members, []interface{}{m.Name, m.Email, m.Phone, m.Role, m.Status, LongDate(m.BirthDate), yesNo(m.IsBaptized)})
	}

	financial := [][]interface{}{{"Date", "Type", "Category", "Amount", "Description"}}
	for _, r := range sn.FinancialRecords {
		financial = append(financial, []interface{}{LongDate(r.Date), r.Type, r.Category, r.Amount, r.Description})
	}

	assets := [][]interface{}{{"Name", "Category", "Status", "Value", "Location"}}
	for _, a := range sn.Assets {
		assets = append(assets, []interface{}{a.Name, a.Category, string(a.Status), a.Value, a.Location})
	}

	return writeWorkbook(w, []sheet{
		{name: "Members", rows: members},
		{name: "Financial", rows: financial, moneyCol: "D"},
		{name: "Assets", rows: assets, moneyCol: "D"},
	})
}

// writeWorkbook writes sheets in order with a bold header row. The first sheet is active.
func writeWorkbook(w io.Writer, sheets []sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(currencyFormat)})
	if err != nil {
		return fmt.Errorf("currency style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
		if err := writeRows(f, sh.name, sh.rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
		last, _ := excelize.ColumnNumberToName(len(sh.rows[0]))
		if err := f.SetCellStyle(sh.name, "A1", last+"1", header); err != nil {
			return err
		}
		if sh.moneyCol != "" {
			if err := f.SetColStyle(sh.name, sh.moneyCol, money); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func strPtr(s string) *string { return &s }
