package models

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/church-console/backend/pkg/rowmap"
)

// Media kinds.
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaDocument = "document"
)

var (
	ErrMediaType  = errors.New("media type must be image, video or document")
	ErrMediaTitle = errors.New("media title is required and at most 200 characters")
)

// MediaFile is an item of the media library. StorageKey is set when the object lives in our bucket.
type MediaFile struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	URL        string  `json:"url"`
	Thumbnail  *string `json:"thumbnail,omitempty"`
	Size       int64   `json:"size"`
	Category   string  `json:"category"`
	Folder     *string `json:"folder,omitempty"`
	StorageKey *string `json:"storageKey,omitempty"`
	UploadDate string  `json:"uploadDate"`
}

// Validate checks the title and media kind.
func (m MediaFile) Validate() error { return m.ValidateFields() }

// ValidateFields runs the checks of the named view fields only.
func (m MediaFile) ValidateFields(fields ...string) error {
	if covers(fields, "title") {
		if t := strings.TrimSpace(m.Title); t == "" || utf8.RuneCountInString(t) > 200 {
			return ErrMediaTitle
		}
	}
	if !covers(fields, "type") {
		return nil
	}
	switch m.Type {
	case MediaImage, MediaVideo, MediaDocument:
		return nil
	}
	return ErrMediaType
}

// MediaFileSchema maps MediaFile to the media_files table. The upload date doubles as creation time.
var MediaFileSchema = &rowmap.Schema[MediaFile]{
	Table:   "media_files",
	Key:     "id",
	Created: "upload_date",
	Order:   rowmap.Order{Column: "upload_date", Desc: true},
	Fields: []rowmap.Field[MediaFile]{
		rowmap.Col("id", "id", func(m *MediaFile) any { return &m.ID }),
		rowmap.Col("title", "title", func(m *MediaFile) any { return &m.Title }),
		rowmap.Col("type", "type", func(m *MediaFile) any { return &m.Type }),
		rowmap.Col("url", "url", func(m *MediaFile) any { return &m.URL }),
		rowmap.Col("thumbnail", "thumbnail", func(m *MediaFile) any { return &m.Thumbnail }),
		rowmap.Col("size", "size", func(m *MediaFile) any { return &m.Size }),
		rowmap.Col("category", "category", func(m *MediaFile) any { return &m.Category }),
		rowmap.Col("folder", "folder", func(m *MediaFile) any { return &m.Folder }),
		rowmap.Col("storageKey", "storage_key", func(m *MediaFile) any { return &m.StorageKey }),
		rowmap.Col("uploadDate", "upload_date", func(m *MediaFile) any { return &m.UploadDate }),
	},
}
