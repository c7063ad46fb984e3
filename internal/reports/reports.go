// Package reports renders store snapshots as downloadable files: the asset CSV, the XLSX workbooks,
// the PDF summary and member ID cards.
package reports

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/church-console/backend/internal/store"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Report is a rendered file.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Build renders sn in format. now dates the file name and the PDF header.
func Build(format Format, sn store.Snapshot, now time.Time) (Report, error) {
	var (
		buf bytes.Buffer
		err error
		r   Report
	)
	day := now.Format(time.DateOnly)
	switch format {
	case FormatCSV:
		err = AssetsCSV(&buf, sn.Assets)
		r = Report{Filename: "assets-report-" + day + ".csv", ContentType: "text/csv; charset=utf-8"}
	case FormatXLSX:
		err = Workbook(&buf, sn)
		r = Report{Filename: "church-management-report-" + day + ".xlsx", ContentType: xlsxContentType}
	case FormatPDF:
		err = SummaryPDF(&buf, sn, now)
		r = Report{Filename: "church-management-report-" + day + ".pdf", ContentType: "application/pdf"}
	default:
		return Report{}, fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return Report{}, fmt.Errorf("build %s report: %w", format, err)
	}
	r.Body = buf.Bytes()
	return r, nil
}

// Currency formats an amount as US dollars with thousands separators, e.g. $1,234.50.
func Currency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

// shortDate renders an ISO date as "Jan 2, 2006". Unparseable input is returned unchanged.
func shortDate(iso string) string {
	if len(iso) >= len(time.DateOnly) {
		if d, err := time.Parse(time.DateOnly, iso[:len(time.DateOnly)]); err == nil {
			return d.Format("Jan 2, 2006")
		}
	}
	return iso
}

// LongDate renders an ISO date as "January 2, 2006". Unparseable input is returned unchanged.
func LongDate(iso string) string {
	if len(iso) >= len(time.DateOnly) {
		if d, err := time.Parse(time.DateOnly, iso[:len(time.DateOnly)]); err == nil {
			return d.Format("January 2, 2006")
		}
	}
	return iso
}
