package models

import (
	"errors"

	"github.com/church-console/backend/pkg/rowmap"
)

// MaxAssetValue is the upper bound accepted by the inventory form.
const MaxAssetValue = 1_000_000

var (
	ErrAssetStatus = errors.New("unknown asset status")
	ErrAssetValue  = errors.New("asset value must be between 0 and 1,000,000")
)

// AssetStatus is the closed set of inventory states.
type AssetStatus string

const (
	AssetAvailable   AssetStatus = "Available"
	AssetInUse       AssetStatus = "In Use"
	AssetMaintenance AssetStatus = "Maintenance"
	AssetReserved    AssetStatus = "Reserved"
	AssetRetired     AssetStatus = "Retired"
	AssetDisposed    AssetStatus = "Disposed"
)

// AssetStatuses lists every AssetStatus in display order.
var AssetStatuses = []AssetStatus{AssetAvailable, AssetInUse, AssetMaintenance, AssetReserved, AssetRetired, AssetDisposed}

// Valid reports whether s is one of AssetStatuses.
func (s AssetStatus) Valid() bool {
	for _, v := range AssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Document is a file attached to an asset (invoice, manual, photo).
type Document struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploadedAt"`
}

// Asset is an inventory item.
type Asset struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Location        string      `json:"location"`
	Status          AssetStatus `json:"status"`
	AcquisitionDate string      `json:"acquisitionDate"`
	Value           float64     `json:"value"`
	Documents       []Document  `json:"documents,omitempty"`
	LastModifiedAt  *string     `json:"lastModifiedAt,omitempty"`
	LastModifiedBy  *string     `json:"lastModifiedBy,omitempty"`
	CreatedAt       string      `json:"createdAt"`
}

// Validate checks the status enum and value range.
func (a Asset) Validate() error { return a.ValidateFields() }

// ValidateFields runs the checks of the named view fields only.
func (a Asset) ValidateFields(fields ...string) error {
	if covers(fields, "status") && !a.Status.Valid() {
		return ErrAssetStatus
	}
	if covers(fields, "value") && (a.Value < 0 || a.Value > MaxAssetValue) {
		return ErrAssetValue
	}
	return nil
}

// AssetSchema maps Asset to the assets table.
var AssetSchema = &rowmap.Schema[Asset]{
	Table:   "assets",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "created_at", Desc: true},
	Fields: []rowmap.Field[Asset]{
		rowmap.Col("id", "id", func(a *Asset) any { return &a.ID }),
		rowmap.Col("name", "name", func(a *Asset) any { return &a.Name }),
		rowmap.Col("description", "description", func(a *Asset) any { return &a.Description }),
		rowmap.Col("category", "category", func(a *Asset) any { return &a.Category }),
		rowmap.Col("location", "location", func(a *Asset) any { return &a.Location }),
		rowmap.Col("status", "status", func(a *Asset) any { return &a.Status }),
		rowmap.Col("acquisitionDate", "acquisition_date", func(a *Asset) any { return &a.AcquisitionDate }),
		rowmap.Col("value", "value", func(a *Asset) any { return &a.Value }),
		rowmap.JSONCol("documents", "documents", func(a *Asset) any { return &a.Documents }),
		rowmap.Col("lastModifiedAt", "last_modified_at", func(a *Asset) any { return &a.LastModifiedAt }),
		rowmap.Col("lastModifiedBy", "last_modified_by", func(a *Asset) any { return &a.LastModifiedBy }),
		rowmap.Col("createdAt", "created_at", func(a *Asset) any { return &a.CreatedAt }),
	},
}
