package reports

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/church-console/backend/internal/models"
)

// Card dimensions in millimetres (ISO/IEC 7810 ID-1, credit card size).
const (
	cardWidth  = 85.6
	cardHeight = 54
)

// MemberCardFilename is the download name of a member's ID card.
func MemberCardFilename(memberID string) string {
	return "member-card-" + memberID + ".pdf"
}

// MemberCardPDF writes a two-page membership card: the front carries the church name, the member's
// name, role and milestones, the back their contact details and address.
func MemberCardPDF(w io.Writer, m models.Member, churchName string) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: cardWidth, Ht: cardHeight},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(m.Name+" membership card", true)
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(false, 0)

	text := func(x, y, size float64, style, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(x, y, tr(s))
	}

	// Front
	pdf.AddPage()
	pdf.SetFillColor(79, 70, 229)
	pdf.Rect(0, 0, cardWidth, 20, "F")
	pdf.SetTextColor(255, 255, 255)
	text(25, 10, 12, "B", churchName)

	pdf.SetTextColor(0, 0, 0)
	text(25, 27, 14, "B", m.Name)
	text(25, 32, 10, "", m.Role)
	y := 37.0
	if m.BaptismDate != nil && *m.BaptismDate != "" {
		text(25, y, 9, "", "Baptism: "+shortDate(*m.BaptismDate))
		y += 5
	}
	if m.ConversionDate != nil && *m.ConversionDate != "" {
		text(25, y, 9, "", "Conversion: "+shortDate(*m.ConversionDate))
	}

	// Back
	pdf.AddPage()
	text(5, 10, 8, "B", "Contact Information:")
	text(5, 15, 8, "", m.Email)
	text(5, 20, 8, "", m.Phone)
	text(5, 25, 8, "B", "Address:")
	a := m.Address
	lines := []string{
		a.Street + ", " + a.Number,
		a.Neighborhood,
		a.City + ", " + a.State,
		"CEP: " + a.CEP,
	}
	for i, l := range lines {
		text(5, 30+float64(i)*4, 8, "", l)
	}
	if m.MaritalStatus != nil && *m.MaritalStatus != "" {
		text(5, 48, 8, "", "Marital Status: "+*m.MaritalStatus)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
