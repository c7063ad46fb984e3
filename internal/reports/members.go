package reports

import (
	"io"

	"github.com/church-console/backend/internal/models"
)

// MembersReportFilename is the download name of the member list.
const MembersReportFilename = "members-report.xlsx"

// MemberFilter selects members for the member list. Empty fields match everything.
type MemberFilter struct {
	Role     string
	Status   string
	Category string
	Baptized *bool
}

// Match reports whether m passes every set criterion.
func (f MemberFilter) Match(m models.Member) bool {
	switch {
	case f.Role != "" && m.Role != f.Role:
		return false
	case f.Status != "" && m.Status != f.Status:
		return false
	case f.Category != "" && m.Category != f.Category:
		return false
	case f.Baptized != nil && m.IsBaptized != *f.Baptized:
		return false
	}
	return true
}

// MembersWorkbook writes the filtered member list on a single Members sheet.
func MembersWorkbook(w io.Writer, members []models.Member, filter MemberFilter) error {
	rows := [][]interface{}{{
		"Name", "Email", "Phone", "Role", "Category", "Status", "Birth Date", "Address",
		"Baptized", "Baptism Date", "Conversion Date", "Created At",
	}}
	for _, m := range members {
		if !filter.Match(m) {
			continue
		}
		rows = append(rows, []interface{}{
			m.Name, m.Email, m.Phone, m.Role, m.Category, m.Status, LongDate(m.BirthDate),
			shortAddress(m.Address), yesNo(m.IsBaptized), optionalDate(m.BaptismDate),
			optionalDate(m.ConversionDate), LongDate(m.CreatedAt),
		})
	}
	return writeWorkbook(w, []sheet{{name: "Members", rows: rows}})
}

func shortAddress(a models.Address) string {
	if a.Street == "" && a.City == "" {
		return ""
	}
	return a.Street + ", " + a.Number + ", " + a.City
}

func optionalDate(d *string) string {
	if d == nil || *d == "" {
		return "N/A"
	}
	return LongDate(*d)
}
