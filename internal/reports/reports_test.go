package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
)

var now = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func sample() store.Snapshot {
	return store.Snapshot{
		Members: []models.Member{{Name: "Ana", Email: "ana@example.com", Status: models.MemberActive, BirthDate: "1990-05-20", IsBaptized: true}},
		Assets: []models.Asset{
			{Name: "Piano, grand", Category: "Instruments", Status: models.AssetInUse, AcquisitionDate: "2019-03-03", Value: 60},
			{Name: "Chairs", Status: models.AssetAvailable, Value: 40},
		},
		FinancialRecords: []models.FinancialRecord{
			{Type: models.TypeIncome, Amount: 1500, Category: "Tithes", Date: "2024-05-05"},
			{Type: models.TypeExpense, Amount: 250.5, Category: "Utilities", Date: "2024-05-06"},
		},
	}
}

func TestAssetsCSV(t *testing.T) {
	r, err := Build(FormatCSV, sample(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Filename != "assets-report-2024-05-10.csv" {
		t.Fatalf("Filename = %q", r.Filename)
	}
	rows, err := csv.NewReader(bytes.NewReader(r.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Name" {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][0] != "Piano, grand" || rows[1][3] != "In Use" || rows[1][4] != "March 3, 2019" || rows[1][5] != "60.00" {
		t.Fatalf("asset row = %v", rows[1])
	}
}

func TestWorkbookSheets(t *testing.T) {
	r, err := Build(FormatXLSX, sample(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(r.Body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "Members,Financial,Assets" {
		t.Fatalf("sheets = %s", got)
	}
	rows, err := f.GetRows("Financial")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][2] != "Tithes" {
		t.Fatalf("financial rows = %v", rows)
	}
	baptized, _ := f.GetCellValue("Members", "G2")
	if baptized != "Yes" {
		t.Fatalf("Members!G2 = %q", baptized)
	}
}

func TestSummaryPDF(t *testing.T) {
	r, err := Build(FormatPDF, sample(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.HasPrefix(r.Body, []byte("%PDF-")) || r.ContentType != "application/pdf" {
		t.Fatalf("not a pdf: %q", r.Body[:min(len(r.Body), 8)])
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("ParseFormat(XLSX) = %q, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCurrency(t *testing.T) {
	for in, want := range map[float64]string{0: "$0.00", 1234.5: "$1,234.50", 1000000: "$1,000,000.00", -42.1: "-$42.10", 999.999: "$1,000.00"} {
		if got := Currency(in); got != want {
			t.Errorf("Currency(%v) = %q, want %q", in, got, want)
		}
	}
}
