package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/church-console/backend/internal/store"
)

// SummaryPDF writes the one-page management summary: headline counts and the financial summary.
func SummaryPDF(w io.Writer, sn store.Snapshot, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Church Management Report", true)
	pdf.AddPage()

	heading := func(size float64, text string) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, size*0.6, tr(text), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(60, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}

	heading(20, "Church Management Report")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Generated "+now.Format("January 2, 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	heading(16, "Summary Statistics")
	line("Total Members:", fmt.Sprint(len(sn.Members)))
	line("Total Events:", fmt.Sprint(len(sn.Events)+len(sn.EducationEvents)))
	line("Total Assets:", fmt.Sprint(len(sn.Assets)))
	line("Total Asset Value:", Currency(sn.TotalAssetValue()))
	line("Groups:", fmt.Sprint(len(sn.Groups)))
	pdf.Ln(6)

	fs := sn.FinancialSummary()
	heading(16, "Financial Summary")
	line("Total Income:", Currency(fs.Income))
	line("Total Expenses:", Currency(fs.Expenses))
	line("Net Balance:", Currency(fs.Net))

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
