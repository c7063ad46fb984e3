package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/church-console/backend/internal/models"
)

var assetColumns = []string{"Name", "Category", "Location", "Status", "Acquisition Date", "Value", "Description"}

// AssetsCSV writes the inventory report. Value is a plain decimal so spreadsheets can sum it.
func AssetsCSV(w io.Writer, assets []models.Asset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(assetColumns); err != nil {
		return err
	}
	for _, a := range assets {
		if err := cw.Write([]string{
			a.Name,
			a.Category,
			a.Location,
			string(a.Status),
			LongDate(a.AcquisitionDate),
			strconv.FormatFloat(a.Value, 'f', 2, 64),
			a.Description,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
